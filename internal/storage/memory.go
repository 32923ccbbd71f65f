package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/contentarch/semstore/internal/models"
)

// MemoryStorage is the in-process reference backend: plain maps behind an
// RWMutex. Reads hand out copies so callers always see a consistent snapshot
// of a single document.
type MemoryStorage struct {
	mu        sync.RWMutex
	documents map[string]*models.ContentDocument
	records   map[string]*models.EmbeddingRecord
	history   []*models.SearchHistoryRecord
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		documents: make(map[string]*models.ContentDocument),
		records:   make(map[string]*models.EmbeddingRecord),
	}
}

// CreateDocument inserts a document. Fails if the id already exists.
func (s *MemoryStorage) CreateDocument(ctx context.Context, doc *models.ContentDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	s.documents[doc.ID] = copyDocument(doc)
	return nil
}

// GetDocument returns a copy of the document, or ErrNotFound.
func (s *MemoryStorage) GetDocument(ctx context.Context, id string) (*models.ContentDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return copyDocument(doc), nil
}

// UpdateDocument replaces an existing document, or returns ErrNotFound.
func (s *MemoryStorage) UpdateDocument(ctx context.Context, doc *models.ContentDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, ErrNotFound)
	}
	s.documents[doc.ID] = copyDocument(doc)
	return nil
}

// DeleteDocument removes a document. Deleting an absent id is a no-op.
func (s *MemoryStorage) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// ListDocuments returns active documents ordered by id ascending, filtered by
// content type when contentType is non-empty.
func (s *MemoryStorage) ListDocuments(ctx context.Context, contentType string) ([]*models.ContentDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*models.ContentDocument, 0, len(s.documents))
	for _, doc := range s.documents {
		if contentType != "" && doc.ContentType != contentType {
			continue
		}
		docs = append(docs, copyDocument(doc))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// PutEmbeddingRecord inserts or replaces an embedding record.
func (s *MemoryStorage) PutEmbeddingRecord(ctx context.Context, rec *models.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = copyRecord(rec)
	return nil
}

// GetEmbeddingRecord returns a copy of the record, or ErrNotFound.
func (s *MemoryStorage) GetEmbeddingRecord(ctx context.Context, id string) (*models.EmbeddingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("embedding record %s: %w", id, ErrNotFound)
	}
	return copyRecord(rec), nil
}

// DeleteEmbeddingRecord removes a record. Deleting an absent id is a no-op.
func (s *MemoryStorage) DeleteEmbeddingRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// AppendSearch appends a search history record.
func (s *MemoryStorage) AppendSearch(ctx context.Context, rec *models.SearchHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.history = append(s.history, &cp)
	return nil
}

// ListSearchesSince returns history records with RecordedAt >= cutoff in
// append order.
func (s *MemoryStorage) ListSearchesSince(ctx context.Context, cutoff time.Time) ([]*models.SearchHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SearchHistoryRecord
	for _, rec := range s.history {
		if rec.RecordedAt.Before(cutoff) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

// CountDocuments returns the number of stored documents.
func (s *MemoryStorage) CountDocuments(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.documents)), nil
}

// Close is a no-op for MemoryStorage.
func (s *MemoryStorage) Close() error {
	return nil
}

func copyDocument(doc *models.ContentDocument) *models.ContentDocument {
	cp := *doc
	cp.Embedding = append([]float32(nil), doc.Embedding...)
	cp.Metadata = copyMetadata(doc.Metadata)
	return &cp
}

func copyRecord(rec *models.EmbeddingRecord) *models.EmbeddingRecord {
	cp := *rec
	cp.Vector = append([]float32(nil), rec.Vector...)
	return &cp
}

func copyMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	cp := make(map[string]any, len(meta))
	for k, v := range meta {
		cp[k] = v
	}
	return cp
}
