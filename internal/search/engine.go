package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/contentarch/semstore/internal/embedding"
	"github.com/contentarch/semstore/internal/extract"
	"github.com/contentarch/semstore/internal/models"
	"github.com/contentarch/semstore/internal/storage"
)

// Engine scores every stored document against a query embedding. Linear scan
// is the contract here: exact ranking, threshold, and limit semantics matter
// more than query latency at this corpus size.
type Engine struct {
	storage  storage.Storage
	embedder embedding.Embedder
	defaults models.SearchDefaults
}

// NewEngine creates a search engine over the given storage and embedder.
// Queries with unset limit or threshold fall back to defaults.
func NewEngine(st storage.Storage, emb embedding.Embedder, defaults models.SearchDefaults) *Engine {
	return &Engine{storage: st, embedder: emb, defaults: defaults}
}

type scoredDoc struct {
	doc        *models.ContentDocument
	similarity float64
}

// Search embeds the query, scans candidate documents, keeps those strictly
// above the threshold, sorts by similarity descending (ties by id ascending),
// and truncates to the limit.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	query.ApplyDefaults(e.defaults)
	embedded, err := e.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	docs, err := e.storage.ListDocuments(ctx, query.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	threshold := *query.Threshold
	var matches []scoredDoc
	for _, doc := range docs {
		sim := Cosine(embedded.Vector, doc.Embedding)
		if sim > threshold {
			matches = append(matches, scoredDoc{doc: doc, similarity: sim})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].similarity != matches[j].similarity {
			return matches[i].similarity > matches[j].similarity
		}
		return matches[i].doc.ID < matches[j].doc.ID
	})

	total := len(matches)
	if len(matches) > query.Limit {
		matches = matches[:query.Limit]
	}
	results := make([]*models.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = &models.SearchResult{
			ContentID:   m.doc.ID,
			Title:       m.doc.Title,
			ContentType: m.doc.ContentType,
			Metadata:    m.doc.Metadata,
			Preview:     extract.Preview(m.doc.SearchableText),
			Similarity:  m.similarity,
		}
	}
	return &models.SearchResponse{
		Query:          query.Query,
		Results:        results,
		TotalResults:   total,
		SearchedAt:     time.Now().UTC(),
		QueryEmbedding: embedded.Vector,
		Model:          embedded.Model,
	}, nil
}
