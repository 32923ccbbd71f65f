package search

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/contentarch/semstore/internal/embedding"
	"github.com/contentarch/semstore/internal/models"
	"github.com/contentarch/semstore/internal/storage"
)

// fixedEmbedder returns canned vectors per text so similarities are exact.
type fixedEmbedder struct {
	vectors map[string][]float32
	dims    int
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) (*embedding.Result, error) {
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return &embedding.Result{Vector: v, Model: "fixed", Dimensions: f.dims}, nil
}

func (f *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]*embedding.Result, error) {
	out := make([]*embedding.Result, len(texts))
	for i, t := range texts {
		r, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (f *fixedEmbedder) Dimensions() int { return f.dims }
func (f *fixedEmbedder) Model() string   { return "fixed" }
func (f *fixedEmbedder) Close() error    { return nil }

func seedDoc(t *testing.T, st storage.Storage, id, contentType string, vec []float32) {
	t.Helper()
	err := st.CreateDocument(context.Background(), &models.ContentDocument{
		ID:             id,
		ContentType:    contentType,
		Title:          id,
		SearchableText: "text for " + id,
		Embedding:      vec,
		Status:         models.StatusActive,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func newTestEngine(t *testing.T, queryVec []float32) (*Engine, storage.Storage) {
	t.Helper()
	st := storage.NewMemoryStorage()
	emb := &fixedEmbedder{vectors: map[string][]float32{"query": queryVec}, dims: len(queryVec)}
	return NewEngine(st, emb, models.StandardSearchDefaults()), st
}

func searchWith(t *testing.T, e *Engine, threshold float64, limit int, contentType string) *models.SearchResponse {
	t.Helper()
	q := &models.SearchQuery{Query: "query", Threshold: &threshold, Limit: limit, ContentType: contentType}
	resp, err := e.Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestEngine_ThresholdIsStrict(t *testing.T) {
	e, st := newTestEngine(t, []float32{1, 0})
	seedDoc(t, st, "exact", "", []float32{1, 0})          // similarity 1.0
	seedDoc(t, st, "orthogonal", "", []float32{0, 1})     // similarity 0.0
	seedDoc(t, st, "half", "", []float32{0.5, 0.8660254}) // similarity 0.5

	resp := searchWith(t, e, 0.5, 10, "")
	for _, r := range resp.Results {
		if r.Similarity <= 0.5 {
			t.Errorf("result %s has similarity %v <= threshold", r.ContentID, r.Similarity)
		}
	}
	if len(resp.Results) != 1 || resp.Results[0].ContentID != "exact" {
		t.Errorf("results=%v, want only exact", resp.Results)
	}
}

func TestEngine_LimitReturnsTopK(t *testing.T) {
	e, st := newTestEngine(t, []float32{1, 0})
	vecs := map[string][]float32{
		"a": {1, 0},
		"b": {0.9, 0.43588989},
		"c": {0.8, 0.6},
		"d": {0.7, 0.71414284},
	}
	for id, v := range vecs {
		seedDoc(t, st, id, "", v)
	}
	resp := searchWith(t, e, 0.0, 2, "")
	if resp.TotalResults != 4 {
		t.Errorf("TotalResults=%d, want 4", resp.TotalResults)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("len(results)=%d, want 2", len(resp.Results))
	}
	if resp.Results[0].ContentID != "a" || resp.Results[1].ContentID != "b" {
		t.Errorf("top-2 = %s, %s; want a, b", resp.Results[0].ContentID, resp.Results[1].ContentID)
	}
}

func TestEngine_SortDescendingTieByID(t *testing.T) {
	e, st := newTestEngine(t, []float32{1, 0})
	// z and m have identical vectors, so identical similarity.
	seedDoc(t, st, "z", "", []float32{0.9, 0.43588989})
	seedDoc(t, st, "m", "", []float32{0.9, 0.43588989})
	seedDoc(t, st, "top", "", []float32{1, 0})

	resp := searchWith(t, e, 0.0, 10, "")
	got := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		got[i] = r.ContentID
	}
	want := "top,m,z"
	if strings.Join(got, ",") != want {
		t.Errorf("order=%v, want %s", got, want)
	}
}

func TestEngine_ContentTypeFilter(t *testing.T) {
	e, st := newTestEngine(t, []float32{1, 0})
	seedDoc(t, st, "blog", "blog_post", []float32{1, 0})
	seedDoc(t, st, "page", "landing_page", []float32{1, 0})

	resp := searchWith(t, e, 0.0, 10, "blog_post")
	if len(resp.Results) != 1 || resp.Results[0].ContentID != "blog" {
		t.Errorf("filtered results=%v, want only blog", resp.Results)
	}
}

func TestEngine_ResponseFields(t *testing.T) {
	e, st := newTestEngine(t, []float32{1, 0})
	seedDoc(t, st, "doc", "blog_post", []float32{1, 0})

	resp := searchWith(t, e, 0.5, 10, "")
	if resp.Query != "query" {
		t.Errorf("Query=%q", resp.Query)
	}
	if resp.Model != "fixed" {
		t.Errorf("Model=%q", resp.Model)
	}
	if len(resp.QueryEmbedding) != 2 {
		t.Errorf("QueryEmbedding len=%d", len(resp.QueryEmbedding))
	}
	if resp.SearchedAt.IsZero() {
		t.Error("SearchedAt is zero")
	}
	r := resp.Results[0]
	if r.Preview != "text for doc" {
		t.Errorf("Preview=%q", r.Preview)
	}
	if r.ContentType != "blog_post" {
		t.Errorf("ContentType=%q", r.ContentType)
	}
}

func TestEngine_EmbedFailureSurfaces(t *testing.T) {
	st := storage.NewMemoryStorage()
	e := NewEngine(st, &fixedEmbedder{vectors: map[string][]float32{}, dims: 2}, models.StandardSearchDefaults())
	threshold := 0.5
	_, err := e.Search(context.Background(), &models.SearchQuery{Query: "unknown", Threshold: &threshold})
	if err == nil {
		t.Error("expected embedding failure to surface")
	}
}

func TestEngine_ConfiguredDefaults(t *testing.T) {
	st := storage.NewMemoryStorage()
	emb := &fixedEmbedder{vectors: map[string][]float32{"query": {1, 0}}, dims: 2}
	// Threshold 0.2 admits the 0.5-similarity document that the standard 0.7
	// default would drop; MaxLimit caps the explicit limit.
	e := NewEngine(st, emb, models.SearchDefaults{Limit: 1, MaxLimit: 2, Threshold: 0.2})
	seedDoc(t, st, "exact", "", []float32{1, 0})
	seedDoc(t, st, "half", "", []float32{0.5, 0.8660254})

	resp, err := e.Search(context.Background(), &models.SearchQuery{Query: "query"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalResults != 2 {
		t.Errorf("TotalResults=%d, want 2", resp.TotalResults)
	}
	if len(resp.Results) != 1 || resp.Results[0].ContentID != "exact" {
		t.Errorf("results=%v, want exact only (default limit 1)", resp.Results)
	}

	resp, err = e.Search(context.Background(), &models.SearchQuery{Query: "query", Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("len(results)=%d, want capped at 2", len(resp.Results))
	}
}
