// Package models defines core data structures for content documents, search
// queries, results, and analytics.
package models

import "time"

// StatusActive is the lifecycle status of a stored document until it is deleted.
const StatusActive = "active"

// ContentDocument is the stored unit of content: the original payload plus its
// derived searchable text, embedding, and metadata.
type ContentDocument struct {
	ID             string         `json:"id"`
	ContentType    string         `json:"content_type"`
	Title          string         `json:"title"`
	Payload        *ContentPayload `json:"payload"`
	SearchableText string         `json:"searchable_text"`
	Embedding      []float32      `json:"-"`
	Metadata       map[string]any `json:"metadata"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// EmbeddingRecord is a secondary index entry carrying a copy of a document's
// vector and a light metadata projection. It is created or refreshed together
// with its parent document and removed with it.
type EmbeddingRecord struct {
	ID          string    `json:"id"`
	ContentID   string    `json:"content_id"`
	Vector      []float32 `json:"-"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title"`
	Dimensions  int       `json:"dimensions"`
	Model       string    `json:"model"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EmbeddingRecordID returns the id under which a document's embedding record
// is stored.
func EmbeddingRecordID(contentID string) string {
	return "embedding_" + contentID
}

// ContentPayload is the opaque content object handed to the store. The store
// never interprets it except to derive searchable text: structured generation
// output carries a Data block, simpler callers set Content or Text.
type ContentPayload struct {
	Data    *PayloadData `json:"data,omitempty"`
	Content string       `json:"content,omitempty"`
	Text    string       `json:"text,omitempty"`
}

// PayloadData is the structured shape produced by the content generation
// pipeline: a title, a summary, and ordered sections.
type PayloadData struct {
	ContentID   string         `json:"contentId,omitempty"`
	Title       string         `json:"title,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Sections    []PayloadSection `json:"sections,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// PayloadSection is one titled body of generated content.
type PayloadSection struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// SearchHistoryRecord is one append-only entry per executed search.
type SearchHistoryRecord struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	UserID      string    `json:"user_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	ResultCount int       `json:"result_count"`
	Threshold   float64   `json:"threshold"`
	ContentType string    `json:"content_type,omitempty"`
	Model       string    `json:"model"`
}

// StoreReceipt is returned by a successful store operation.
type StoreReceipt struct {
	ContentID   string    `json:"content_id"`
	VectorID    string    `json:"vector_id"`
	EmbeddingID string    `json:"embedding_id"`
	Dimensions  int       `json:"dimensions"`
	StoredAt    time.Time `json:"stored_at"`
}

// UpdateReceipt is returned by a successful update operation.
type UpdateReceipt struct {
	ContentID  string    `json:"content_id"`
	UpdatedAt  time.Time `json:"updated_at"`
	Dimensions int       `json:"dimensions"`
}

// DeleteReceipt is returned by a delete operation. Delete is idempotent, so a
// receipt is returned whether or not the id existed.
type DeleteReceipt struct {
	ContentID string    `json:"content_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
