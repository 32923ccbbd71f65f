package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
)

// DefaultDimensions matches the dimensionality of the production embedding
// model so stored vectors survive a backend swap.
const DefaultDimensions = 1536

// HashModel is the model identifier reported by HashEmbedder.
const HashModel = "semstore-hash-v1"

// HashEmbedder derives embeddings from a cryptographic hash of the text
// rather than a trained model. It is a documented stand-in for a real
// embedding service: deterministic, every component in [-1, 1], and
// unit-normalized so identical text scores cosine similarity 1.0.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a deterministic embedder with the given
// dimensionality, defaulting to DefaultDimensions when non-positive.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns the embedding for text. The vector is expanded from a chain
// of SHA-256 digests seeded by the text, mapped into [-1, 1], and normalized
// to unit length.
func (e *HashEmbedder) Embed(ctx context.Context, text string) (*Result, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	vec := make([]float32, e.dimensions)
	digest := sha256.Sum256([]byte(text))
	buf := digest[:]
	offset := 0
	for i := 0; i < e.dimensions; i++ {
		if offset+4 > len(buf) {
			next := sha256.Sum256(buf)
			buf = next[:]
			offset = 0
		}
		u := binary.BigEndian.Uint32(buf[offset : offset+4])
		offset += 4
		// Map the 32-bit word to [-1, 1].
		vec[i] = float32(u)/float32(math.MaxUint32)*2 - 1
	}
	normalize(vec)
	return &Result{
		Vector:        vec,
		Model:         HashModel,
		Dimensions:    e.dimensions,
		TokenEstimate: TokenEstimate(text),
	}, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]*Result, error) {
	results := make([]*Result, len(texts))
	for i, text := range texts {
		r, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

// Dimensions returns the embedding dimensionality.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the model identifier.
func (e *HashEmbedder) Model() string {
	return HashModel
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}

// normalize scales vec to unit length in place. A zero vector is left as is.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}
