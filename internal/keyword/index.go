// Package keyword provides an exact-term search index over stored content,
// complementary to semantic similarity search.
package keyword

import "context"

// Entry is the projection of a content document that gets keyword-indexed.
type Entry struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	ContentType string `json:"content_type"`
}

// Result is a single keyword search hit.
type Result struct {
	ContentID string  `json:"content_id"`
	Score     float64 `json:"score"`
}

// Index defines keyword indexing and search operations. Implementations are
// kept in lockstep with the content repository by the store facade.
type Index interface {
	Index(ctx context.Context, contentID string, entry *Entry) error
	Delete(ctx context.Context, contentID string) error
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	DocCount() (uint64, error)
	Close() error
}
