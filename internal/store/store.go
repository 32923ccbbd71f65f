// Package store provides the semantic content store facade: embedding-indexed
// storage of generated content with similarity search and usage analytics.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contentarch/semstore/internal/analytics"
	"github.com/contentarch/semstore/internal/embedding"
	"github.com/contentarch/semstore/internal/extract"
	"github.com/contentarch/semstore/internal/keyword"
	"github.com/contentarch/semstore/internal/models"
	"github.com/contentarch/semstore/internal/search"
	"github.com/contentarch/semstore/internal/storage"
)

// Store composes the embedder, repository, search engine, analytics ledger,
// and optional keyword index behind the public content-store API. Construct
// one per process and inject it into callers.
type Store struct {
	storage         storage.Storage
	embedder        embedding.Embedder
	engine          *search.Engine
	ledger          *analytics.Ledger
	keyword         keyword.Index // nil disables keyword search
	logger          *zap.Logger
	now             func() time.Time
	searchDefaults  models.SearchDefaults
	analyticsWindow int
}

// Option configures a Store.
type Option func(*Store)

// WithKeywordIndex enables keyword search over stored content.
func WithKeywordIndex(idx keyword.Index) Option {
	return func(s *Store) { s.keyword = idx }
}

// WithClock overrides the store's clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSearchDefaults sets the fallback limit, limit cap, and threshold for
// queries that leave them unset.
func WithSearchDefaults(d models.SearchDefaults) Option {
	return func(s *Store) { s.searchDefaults = d }
}

// WithAnalyticsWindow sets the default analytics window in days.
func WithAnalyticsWindow(days int) Option {
	return func(s *Store) { s.analyticsWindow = days }
}

// New creates a store over the given storage backend and embedder.
func New(st storage.Storage, emb embedding.Embedder, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		storage:         st,
		embedder:        emb,
		logger:          logger,
		now:             time.Now,
		searchDefaults:  models.StandardSearchDefaults(),
		analyticsWindow: models.DefaultAnalyticsWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = search.NewEngine(st, emb, s.searchDefaults)
	s.ledger = analytics.NewLedger(st, logger,
		analytics.WithClock(func() time.Time { return s.now() }),
		analytics.WithWindow(s.analyticsWindow),
	)
	return s
}

// StoreContent embeds the payload's searchable text and inserts a new content
// document together with its embedding record. A missing id is assigned.
// An embedding failure aborts before any write.
func (s *Store) StoreContent(ctx context.Context, payload *models.ContentPayload, metadata map[string]any) (*models.StoreReceipt, error) {
	text := extract.SearchableText(payload)
	if text == "" {
		return nil, fmt.Errorf("payload has no extractable text")
	}
	embedded, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to compute embedding: %w", err)
	}

	now := s.now().UTC()
	// Callers may bring their own id (the generation pipeline mints
	// "ai_content_..." ids); otherwise one is assigned.
	contentID := ""
	if payload.Data != nil {
		contentID = payload.Data.ContentID
	}
	if contentID == "" {
		contentID = uuid.New().String()
	}
	contentType := extract.ContentType(payload)
	if contentType == "" {
		if ct, ok := metadata["contentType"].(string); ok {
			contentType = ct
		}
	}
	meta := mergeMetadata(nil, metadata)
	meta["createdAt"] = now.Format(time.RFC3339Nano)
	meta["updatedAt"] = now.Format(time.RFC3339Nano)
	meta["embeddingModel"] = embedded.Model
	meta["dimensions"] = embedded.Dimensions

	doc := &models.ContentDocument{
		ID:             contentID,
		ContentType:    contentType,
		Title:          extract.Title(payload),
		Payload:        payload,
		SearchableText: text,
		Embedding:      embedded.Vector,
		Metadata:       meta,
		Status:         models.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.storage.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	if err := s.storage.PutEmbeddingRecord(ctx, embeddingRecord(doc, embedded.Model)); err != nil {
		// Roll back the half-written document so no document exists without
		// its embedding record.
		_ = s.storage.DeleteDocument(ctx, doc.ID)
		return nil, fmt.Errorf("failed to store embedding record: %w", err)
	}
	s.indexKeyword(ctx, doc)

	s.logger.Debug("content stored",
		zap.String("content_id", doc.ID),
		zap.String("content_type", doc.ContentType),
		zap.Int("dimensions", embedded.Dimensions),
	)
	return &models.StoreReceipt{
		ContentID:   doc.ID,
		VectorID:    doc.ID,
		EmbeddingID: models.EmbeddingRecordID(doc.ID),
		Dimensions:  embedded.Dimensions,
		StoredAt:    now,
	}, nil
}

// UpdateContent re-derives the searchable text and embedding from newPayload,
// replaces the document's payload and embedding, merges metadataPatch into the
// existing metadata, and refreshes the embedding record. The id, status, and
// creation timestamp are preserved. Returns storage.ErrNotFound for an
// unknown id.
func (s *Store) UpdateContent(ctx context.Context, contentID string, newPayload *models.ContentPayload, metadataPatch map[string]any) (*models.UpdateReceipt, error) {
	doc, err := s.storage.GetDocument(ctx, contentID)
	if err != nil {
		return nil, err
	}
	text := extract.SearchableText(newPayload)
	if text == "" {
		return nil, fmt.Errorf("payload has no extractable text")
	}
	embedded, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to compute embedding: %w", err)
	}

	now := s.now().UTC()
	updated := *doc
	updated.Payload = newPayload
	updated.SearchableText = text
	updated.Embedding = embedded.Vector
	updated.Title = extract.Title(newPayload)
	if ct := extract.ContentType(newPayload); ct != "" {
		updated.ContentType = ct
	}
	updated.Metadata = mergeMetadata(doc.Metadata, metadataPatch)
	updated.Metadata["updatedAt"] = now.Format(time.RFC3339Nano)
	updated.Metadata["embeddingModel"] = embedded.Model
	updated.Metadata["dimensions"] = embedded.Dimensions
	updated.UpdatedAt = now

	if err := s.storage.UpdateDocument(ctx, &updated); err != nil {
		return nil, err
	}
	if err := s.storage.PutEmbeddingRecord(ctx, embeddingRecord(&updated, embedded.Model)); err != nil {
		// Restore the prior document so it never diverges from its
		// embedding record.
		_ = s.storage.UpdateDocument(ctx, doc)
		return nil, fmt.Errorf("failed to refresh embedding record: %w", err)
	}
	s.indexKeyword(ctx, &updated)

	s.logger.Debug("content updated", zap.String("content_id", contentID))
	return &models.UpdateReceipt{
		ContentID:  contentID,
		UpdatedAt:  now,
		Dimensions: embedded.Dimensions,
	}, nil
}

// DeleteContent removes a document and its embedding record. Deleting an
// absent id succeeds silently.
func (s *Store) DeleteContent(ctx context.Context, contentID string) (*models.DeleteReceipt, error) {
	if err := s.storage.DeleteDocument(ctx, contentID); err != nil {
		return nil, err
	}
	if err := s.storage.DeleteEmbeddingRecord(ctx, models.EmbeddingRecordID(contentID)); err != nil {
		return nil, err
	}
	if s.keyword != nil {
		if err := s.keyword.Delete(ctx, contentID); err != nil {
			s.logger.Warn("failed to remove keyword entry", zap.String("content_id", contentID), zap.Error(err))
		}
	}
	s.logger.Debug("content deleted", zap.String("content_id", contentID))
	return &models.DeleteReceipt{ContentID: contentID, DeletedAt: s.now().UTC()}, nil
}

// GetContent returns a document by id, or storage.ErrNotFound.
func (s *Store) GetContent(ctx context.Context, contentID string) (*models.ContentDocument, error) {
	return s.storage.GetDocument(ctx, contentID)
}

// Search runs a similarity search and records it in the history ledger.
// History recording is best-effort and never fails the search.
func (s *Store) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	resp, err := s.engine.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	s.ledger.Record(ctx, query, len(resp.Results), resp.Model)
	return resp, nil
}

// KeywordSearch runs an exact-term search over indexed content. Returns an
// error when no keyword index is configured.
func (s *Store) KeywordSearch(ctx context.Context, query string, limit int) ([]*keyword.Result, error) {
	if s.keyword == nil {
		return nil, fmt.Errorf("keyword index not configured")
	}
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit <= 0 {
		limit = s.searchDefaults.Limit
	}
	return s.keyword.Search(ctx, query, limit)
}

// Analytics reports aggregate search statistics over the rolling window.
func (s *Store) Analytics(ctx context.Context, query models.AnalyticsQuery) (*models.AnalyticsReport, error) {
	return s.ledger.Report(ctx, query)
}

// CountDocuments returns the number of stored documents.
func (s *Store) CountDocuments(ctx context.Context) (int64, error) {
	return s.storage.CountDocuments(ctx)
}

// Dimensions returns the embedder's declared dimensionality.
func (s *Store) Dimensions() int {
	return s.embedder.Dimensions()
}

// Model returns the embedder's model identifier.
func (s *Store) Model() string {
	return s.embedder.Model()
}

// Close releases the storage backend, embedder, and keyword index.
func (s *Store) Close() error {
	var firstErr error
	if s.keyword != nil {
		if err := s.keyword.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.storage.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// indexKeyword mirrors a document into the keyword index when one is
// configured. Keyword indexing is supplementary; failures are logged, not
// propagated.
func (s *Store) indexKeyword(ctx context.Context, doc *models.ContentDocument) {
	if s.keyword == nil {
		return
	}
	entry := &keyword.Entry{
		Title:       doc.Title,
		Text:        doc.SearchableText,
		ContentType: doc.ContentType,
	}
	if err := s.keyword.Index(ctx, doc.ID, entry); err != nil {
		s.logger.Warn("failed to index keyword entry", zap.String("content_id", doc.ID), zap.Error(err))
	}
}

func embeddingRecord(doc *models.ContentDocument, model string) *models.EmbeddingRecord {
	return &models.EmbeddingRecord{
		ID:          models.EmbeddingRecordID(doc.ID),
		ContentID:   doc.ID,
		Vector:      doc.Embedding,
		ContentType: doc.ContentType,
		Title:       doc.Title,
		Dimensions:  len(doc.Embedding),
		Model:       model,
		UpdatedAt:   doc.UpdatedAt,
	}
}

// mergeMetadata overlays patch onto base without mutating either.
func mergeMetadata(base, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
