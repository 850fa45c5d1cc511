package memory

import (
	"context"
	"sync"

	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/storage"
)

// Cache is an unbounded, map-backed result cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[core.Query][]core.Item
	closed  bool
}

var _ storage.ResultCache = (*Cache)(nil)

// NewCache creates an empty unbounded cache.
func NewCache() storage.ResultCache {
	return &Cache{entries: make(map[core.Query][]core.Item)}
}

// Get returns the items cached for q.
func (c *Cache) Get(ctx context.Context, q core.Query) ([]core.Item, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false, storage.ErrStorageClosed
	}
	items, ok := c.entries[q]
	return items, ok, nil
}

// Put stores items for q if q is not cached yet.
func (c *Cache) Put(ctx context.Context, q core.Query, items []core.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return storage.ErrStorageClosed
	}
	if _, ok := c.entries[q]; ok {
		return nil
	}
	if items == nil {
		items = []core.Item{}
	}
	c.entries[q] = items
	return nil
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close drops all entries. Later calls fail with storage.ErrStorageClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	clear(c.entries)
	return nil
}
