package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/storage"
)

// Cache implements storage.ResultCache on top of a BadgerDB backend.
// Entries are stored as MUS-encoded core.CacheEntry values.
type Cache struct {
	backend *Backend
}

var _ storage.ResultCache = (*Cache)(nil)

// NewCache creates a result cache stored in backend.
// The cache does not own the backend; closing the cache drops its entries
// but leaves the backend open.
func NewCache(backend *Backend) (storage.ResultCache, error) {
	if backend == nil || backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return &Cache{backend: backend}, nil
}

// Get returns the items cached for q.
// Returns storage.ErrKeyCollision if the stored entry belongs to another query.
func (c *Cache) Get(ctx context.Context, q core.Query) ([]core.Item, bool, error) {
	if c.backend.IsClosed() {
		return nil, false, storage.ErrStorageClosed
	}

	var entry *core.CacheEntry
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheEntryKey(q))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalCacheEntry(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		return nil, false, nil
	}
	if entry.Query != q {
		return nil, false, fmt.Errorf("%w: %q stored under key of %q", storage.ErrKeyCollision, entry.Query, q)
	}
	return entry.Items, true, nil
}

// Put stores items for q unless an entry already exists.
// A concurrent writer for the same query wins without error.
func (c *Cache) Put(ctx context.Context, q core.Query, items []core.Item) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCacheEntryKey(q)
		_, err := tx.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		value := storage.MarshalCacheEntry(&core.CacheEntry{Query: q, Items: items})
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if errors.Is(err, badger.ErrConflict) {
		return nil
	}
	return err
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	if c.backend.IsClosed() {
		return 0
	}

	count := 0
	_ = c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(cacheEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count
}

// Close drops all cache entries from the backend.
func (c *Cache) Close() error {
	if c.backend.IsClosed() {
		return nil
	}
	return c.backend.DeletePrefix(cacheEntryPrefix)
}
