package embedding

import (
	"container/list"
	"context"
	"sync"
)

// Cache is an LRU cache of embed results keyed by text, wrapping another
// Embedder. Results are safe to cache because embedders are deterministic.
type Cache struct {
	inner    Embedder
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value *Result
}

// NewCache wraps inner with an LRU cache of the given capacity.
func NewCache(inner Embedder, capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Cache{
		inner:    inner,
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Embed returns the cached result for text, or delegates to the inner embedder.
func (c *Cache) Embed(ctx context.Context, text string) (*Result, error) {
	c.mu.Lock()
	if elem, ok := c.cache[text]; ok {
		c.lru.MoveToFront(elem)
		r := elem.Value.(*cacheEntry).value
		c.mu.Unlock()
		return r, nil
	}
	c.mu.Unlock()

	r, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.set(text, r)
	return r, nil
}

// EmbedBatch embeds texts, serving cached entries and delegating the misses
// in a single inner call.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([]*Result, error) {
	results := make([]*Result, len(texts))
	var missTexts []string
	var missIdx []int
	c.mu.Lock()
	for i, text := range texts {
		if elem, ok := c.cache[text]; ok {
			c.lru.MoveToFront(elem)
			results[i] = elem.Value.(*cacheEntry).value
		} else {
			missTexts = append(missTexts, text)
			missIdx = append(missIdx, i)
		}
	}
	c.mu.Unlock()
	if len(missTexts) == 0 {
		return results, nil
	}
	fetched, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, r := range fetched {
		results[missIdx[j]] = r
		c.set(missTexts[j], r)
	}
	return results, nil
}

func (c *Cache) set(key string, value *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	elem := c.lru.PushFront(&cacheEntry{key: key, value: value})
	c.cache[key] = elem
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Dimensions returns the inner embedder's dimensionality.
func (c *Cache) Dimensions() int {
	return c.inner.Dimensions()
}

// Model returns the inner embedder's model identifier.
func (c *Cache) Model() string {
	return c.inner.Model()
}

// Close closes the inner embedder.
func (c *Cache) Close() error {
	return c.inner.Close()
}
