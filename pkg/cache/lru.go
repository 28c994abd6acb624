package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache keeps the most recently used entries of a backing cache in memory.
type LRUCache struct {
	inner Cache
	mem   *lru.Cache[string, []byte]
}

// NewLRU fronts inner with an in-memory tier holding up to size entries.
func NewLRU(inner Cache, size int) (*LRUCache, error) {
	mem, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{inner: inner, mem: mem}, nil
}

// Get serves from memory when possible, falling back to the backing cache.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok := c.mem.Get(key); ok {
		return data, true, nil
	}
	data, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	c.mem.Add(key, data)
	return data, true, nil
}

// Set writes through to the backing cache.
func (c *LRUCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.inner.Set(ctx, key, data); err != nil {
		return err
	}
	c.mem.Add(key, data)
	return nil
}

// Delete removes key from both tiers.
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.mem.Remove(key)
	return c.inner.Delete(ctx, key)
}

// Clear purges memory and the backing cache.
func (c *LRUCache) Clear(ctx context.Context) (int, error) {
	c.mem.Purge()
	return c.inner.Clear(ctx)
}

// Close closes the backing cache.
func (c *LRUCache) Close() error {
	return c.inner.Close()
}

var _ Cache = (*LRUCache)(nil)
