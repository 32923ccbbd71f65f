// Package watcher ingests content payload files dropped into watched
// directories, with fsnotify and per-file debouncing.
package watcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contentarch/semstore/internal/models"
	"github.com/contentarch/semstore/internal/store"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches drop directories and stores payload JSON files as content
// documents. A file maps to a stable content id derived from its path, so a
// rewrite updates the same document and a removal deletes it.
type Watcher struct {
	store       *store.Store
	roots       []string
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger
}

// NewWatcher creates a watcher over the given root directories.
func NewWatcher(st *store.Store, roots []string, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		store:       st,
		roots:       roots,
		debounce:    debounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("watcher starting", zap.Strings("roots", w.roots))
	for _, root := range w.roots {
		if err := w.watcher.Add(root); err != nil {
			_ = w.watcher.Close()
			w.watcher = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

// Stop stops the watcher. Safe to call multiple times.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for _, t := range w.debounceMap {
			t.Stop()
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	path := ev.Name
	if !isPayloadFile(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		w.debounceIngest(ctx, path)
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		w.remove(ctx, path)
	}
}

// debounceIngest delays ingestion so a burst of writes to the same file
// results in a single store call.
func (w *Watcher) debounceIngest(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

// ingest stores or updates the document for a payload file.
func (w *Watcher) ingest(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("failed to read payload file", zap.String("path", path), zap.Error(err))
		return
	}
	var payload models.ContentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		w.logger.Warn("invalid payload file", zap.String("path", path), zap.Error(err))
		return
	}
	id := ContentID(path)
	if payload.Data == nil {
		payload.Data = &models.PayloadData{}
	}
	payload.Data.ContentID = id
	meta := map[string]any{"source": path}

	if _, err := w.store.GetContent(ctx, id); err == nil {
		if _, err := w.store.UpdateContent(ctx, id, &payload, meta); err != nil {
			w.logger.Warn("failed to update dropped content", zap.String("path", path), zap.Error(err))
		}
		return
	}
	if _, err := w.store.StoreContent(ctx, &payload, meta); err != nil {
		w.logger.Warn("failed to store dropped content", zap.String("path", path), zap.Error(err))
	}
}

// remove deletes the document for a removed payload file. Delete is
// idempotent, so a file that never stored cleanly is harmless.
func (w *Watcher) remove(ctx context.Context, path string) {
	if _, err := w.store.DeleteContent(ctx, ContentID(path)); err != nil {
		w.logger.Warn("failed to delete dropped content", zap.String("path", path), zap.Error(err))
	}
}

// ContentID derives a stable content id from a payload file path.
func ContentID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(abs)).String()
}

func isPayloadFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Directories returns the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}
