// Package storage defines persistence for content documents, embedding
// records, and search history.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/contentarch/semstore/internal/models"
)

// ErrNotFound indicates an operation addressed a document id that does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines document, embedding-record, and search-history persistence.
//
// Deletes are idempotent: removing an absent id is not an error.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.ContentDocument) error
	GetDocument(ctx context.Context, id string) (*models.ContentDocument, error)
	UpdateDocument(ctx context.Context, doc *models.ContentDocument) error
	DeleteDocument(ctx context.Context, id string) error
	// ListDocuments returns active documents, filtered by content type when
	// contentType is non-empty, ordered by id ascending.
	ListDocuments(ctx context.Context, contentType string) ([]*models.ContentDocument, error)

	// Embedding record operations
	PutEmbeddingRecord(ctx context.Context, rec *models.EmbeddingRecord) error
	GetEmbeddingRecord(ctx context.Context, id string) (*models.EmbeddingRecord, error)
	DeleteEmbeddingRecord(ctx context.Context, id string) error

	// Search history (append-only)
	AppendSearch(ctx context.Context, rec *models.SearchHistoryRecord) error
	// ListSearchesSince returns records with RecordedAt >= cutoff in
	// append order.
	ListSearchesSince(ctx context.Context, cutoff time.Time) ([]*models.SearchHistoryRecord, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)

	Close() error
}
