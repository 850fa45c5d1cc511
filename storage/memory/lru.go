package memory

import (
	"context"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/storage"
)

// LRUCache is a bounded result cache that evicts the least recently used query.
type LRUCache struct {
	entries *lru.Cache[core.Query, []core.Item]
	closed  atomic.Bool
	logger  *slog.Logger
}

var _ storage.ResultCache = (*LRUCache)(nil)

// LRUOption configures an LRUCache.
type LRUOption func(*LRUCache) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) LRUOption {
	return func(c *LRUCache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewLRUCache creates a cache holding at most capacity queries.
func NewLRUCache(capacity int, opts ...LRUOption) (storage.ResultCache, error) {
	if capacity < 1 {
		return nil, storage.ErrInvalidCapacity
	}

	c := &LRUCache{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	entries, err := lru.NewWithEvict(capacity, func(q core.Query, _ []core.Item) {
		c.logger.Debug("evicted cache entry", "query", q)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Get returns the items cached for q and marks q as recently used.
func (c *LRUCache) Get(ctx context.Context, q core.Query) ([]core.Item, bool, error) {
	if c.closed.Load() {
		return nil, false, storage.ErrStorageClosed
	}
	items, ok := c.entries.Get(q)
	return items, ok, nil
}

// Put stores items for q if q is not cached yet.
func (c *LRUCache) Put(ctx context.Context, q core.Query, items []core.Item) error {
	if c.closed.Load() {
		return storage.ErrStorageClosed
	}
	if items == nil {
		items = []core.Item{}
	}
	c.entries.ContainsOrAdd(q, items)
	return nil
}

// Len returns the number of cached queries.
func (c *LRUCache) Len() int {
	return c.entries.Len()
}

// Close drops all entries. Later calls fail with storage.ErrStorageClosed.
func (c *LRUCache) Close() error {
	c.closed.Store(true)
	c.entries.Purge()
	return nil
}
