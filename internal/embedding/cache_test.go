package embedding

import (
	"context"
	"sync/atomic"
	"testing"
)

// countingEmbedder counts inner calls to verify cache behavior.
type countingEmbedder struct {
	*HashEmbedder
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) (*Result, error) {
	c.calls.Add(1)
	return c.HashEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]*Result, error) {
	c.calls.Add(int64(len(texts)))
	return c.HashEmbedder.EmbedBatch(ctx, texts)
}

func TestCache_Hit(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(8)}
	c := NewCache(inner, 10)
	ctx := context.Background()

	a, err := c.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls.Load() != 1 {
		t.Errorf("inner calls=%d, want 1", inner.calls.Load())
	}
	if a != b {
		t.Error("expected cached result to be returned")
	}
}

func TestCache_Eviction(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(8)}
	c := NewCache(inner, 2)
	ctx := context.Background()

	_, _ = c.Embed(ctx, "a")
	_, _ = c.Embed(ctx, "b")
	_, _ = c.Embed(ctx, "c") // evicts "a"
	if c.Len() != 2 {
		t.Errorf("Len=%d, want 2", c.Len())
	}
	_, _ = c.Embed(ctx, "a")
	if inner.calls.Load() != 4 {
		t.Errorf("inner calls=%d, want 4 (a was evicted)", inner.calls.Load())
	}
}

func TestCache_EmbedBatchMixed(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(8)}
	c := NewCache(inner, 10)
	ctx := context.Background()

	_, _ = c.Embed(ctx, "cached")
	results, err := c.EmbedBatch(ctx, []string{"cached", "fresh"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0] == nil || results[1] == nil {
		t.Fatalf("incomplete batch results: %v", results)
	}
	if inner.calls.Load() != 2 {
		t.Errorf("inner calls=%d, want 2 (one single + one batch miss)", inner.calls.Load())
	}
}

func TestCache_Passthrough(t *testing.T) {
	c := NewCache(NewHashEmbedder(32), 4)
	if c.Dimensions() != 32 {
		t.Errorf("Dimensions=%d", c.Dimensions())
	}
	if c.Model() != HashModel {
		t.Errorf("Model=%q", c.Model())
	}
}
