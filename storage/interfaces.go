package storage

import (
	"context"

	"github.com/poiesic/searchpipe/core"
)

// ResultCache maps normalized queries to previously fetched items.
// Implementations must be thread-safe and support concurrent access.
type ResultCache interface {
	// Get returns the items cached for q.
	// The boolean result is false when no entry exists.
	Get(ctx context.Context, q core.Query) ([]core.Item, bool, error)

	// Put stores items for q unless an entry for q already exists.
	// An existing entry is never overwritten. Returns ErrStorageClosed
	// if the cache has been closed.
	Put(ctx context.Context, q core.Query, items []core.Item) error

	// Len returns the number of cached queries.
	Len() int

	// Close releases resources held by the cache.
	Close() error
}
