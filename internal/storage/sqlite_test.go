package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/contentarch/semstore/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "content.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_DocumentRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	doc := testDoc("a")
	doc.Payload = &models.ContentPayload{
		Data: &models.PayloadData{Title: "Sleep Tech", Summary: "Smart mattress AI"},
	}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetDocument(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != doc.Title || got.ContentType != doc.ContentType {
		t.Errorf("got %+v", got)
	}
	if got.Payload == nil || got.Payload.Data.Summary != "Smart mattress AI" {
		t.Errorf("payload not preserved: %+v", got.Payload)
	}
	if len(got.Embedding) != len(doc.Embedding) {
		t.Fatalf("embedding len=%d", len(got.Embedding))
	}
	for i := range doc.Embedding {
		if got.Embedding[i] != doc.Embedding[i] {
			t.Errorf("embedding[%d]=%v, want %v", i, got.Embedding[i], doc.Embedding[i])
		}
	}
}

func TestSQLiteStorage_UpdateAndDelete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	if err := s.UpdateDocument(ctx, testDoc("missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}

	doc := testDoc("a")
	_ = s.CreateDocument(ctx, doc)
	doc.Title = "changed"
	doc.UpdatedAt = time.Now().UTC()
	if err := s.UpdateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetDocument(ctx, "a")
	if got.Title != "changed" {
		t.Errorf("Title=%q", got.Title)
	}

	if err := s.DeleteDocument(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDocument(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: %v", err)
	}
	// Idempotent.
	if err := s.DeleteDocument(ctx, "a"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSQLiteStorage_ListDocumentsFilter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	_ = s.CreateDocument(ctx, testDoc("b"))
	_ = s.CreateDocument(ctx, testDoc("a"))
	other := testDoc("c")
	other.ContentType = "landing_page"
	_ = s.CreateDocument(ctx, other)

	docs, err := s.ListDocuments(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 || docs[0].ID != "a" {
		t.Errorf("docs=%v", docs)
	}
	filtered, _ := s.ListDocuments(ctx, "blog_post")
	if len(filtered) != 2 {
		t.Errorf("filtered len=%d", len(filtered))
	}
}

func TestSQLiteStorage_EmbeddingRecordUpsert(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	rec := &models.EmbeddingRecord{
		ID:         models.EmbeddingRecordID("a"),
		ContentID:  "a",
		Vector:     []float32{0.25, -0.5},
		Dimensions: 2,
		Model:      "m",
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.PutEmbeddingRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Model = "m2"
	if err := s.PutEmbeddingRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetEmbeddingRecord(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "m2" || got.Vector[1] != -0.5 {
		t.Errorf("record=%+v", got)
	}
}

func TestSQLiteStorage_SearchHistoryWindow(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.AppendSearch(ctx, &models.SearchHistoryRecord{
			ID:         string(rune('a' + i)),
			Query:      "q",
			UserID:     "anonymous",
			RecordedAt: base.AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	recs, err := s.ListSearchesSince(ctx, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d, want 2", len(recs))
	}
	if recs[0].ID != "b" || recs[1].ID != "c" {
		t.Error("history not in append order")
	}
}
