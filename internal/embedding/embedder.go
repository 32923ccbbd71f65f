// Package embedding provides text embedding providers and caching.
package embedding

import "context"

// Result is the output of a single embed call.
type Result struct {
	Vector        []float32 `json:"vector"`
	Model         string    `json:"model"`
	Dimensions    int       `json:"dimensions"`
	TokenEstimate int       `json:"token_estimate"`
}

// Embedder produces vector embeddings for text. Implementations must be
// deterministic: identical text yields an identical vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (*Result, error)
	EmbedBatch(ctx context.Context, texts []string) ([]*Result, error)
	Dimensions() int
	Model() string
	Close() error
}

// TokenEstimate is the rough token count for a text (one token per four
// characters), used only for reporting.
func TokenEstimate(text string) int {
	return len(text) / 4
}
