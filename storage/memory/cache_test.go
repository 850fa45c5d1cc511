package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaches(t *testing.T) map[string]storage.ResultCache {
	t.Helper()
	lruCache, err := NewLRUCache(16)
	require.NoError(t, err)
	return map[string]storage.ResultCache{
		"map": NewCache(),
		"lru": lruCache,
	}
}

func TestCache_GetMissing(t *testing.T) {
	for name, cache := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			defer cache.Close()
			items, ok, err := cache.Get(context.Background(), "phone")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, items)
		})
	}
}

func TestCache_PutThenGet(t *testing.T) {
	ctx := context.Background()
	items := []core.Item{{ID: 1, Title: "iPhone 9", Price: 549, Stock: 94}}

	for name, cache := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			defer cache.Close()
			require.NoError(t, cache.Put(ctx, "phone", items))

			got, ok, err := cache.Get(ctx, "phone")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, items, got)
			assert.Equal(t, 1, cache.Len())

			_, ok, err = cache.Get(ctx, "Phone")
			require.NoError(t, err)
			assert.False(t, ok, "keys are exact query strings")
		})
	}
}

func TestCache_PutNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	first := []core.Item{{ID: 1}}
	second := []core.Item{{ID: 2}}

	for name, cache := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			defer cache.Close()
			require.NoError(t, cache.Put(ctx, "q", first))
			require.NoError(t, cache.Put(ctx, "q", second))

			got, ok, err := cache.Get(ctx, "q")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, first, got)
		})
	}
}

func TestCache_EmptyResultIsCached(t *testing.T) {
	ctx := context.Background()
	for name, cache := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			defer cache.Close()
			require.NoError(t, cache.Put(ctx, "nothing", nil))

			got, ok, err := cache.Get(ctx, "nothing")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestCache_Closed(t *testing.T) {
	ctx := context.Background()
	for name, cache := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, cache.Put(ctx, "q", []core.Item{{ID: 1}}))
			require.NoError(t, cache.Close())

			_, _, err := cache.Get(ctx, "q")
			assert.ErrorIs(t, err, storage.ErrStorageClosed)
			assert.ErrorIs(t, cache.Put(ctx, "r", nil), storage.ErrStorageClosed)
			assert.Zero(t, cache.Len())
		})
	}
}

func TestCache_ConcurrentPutFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	for name, cache := range newCaches(t) {
		t.Run(name, func(t *testing.T) {
			defer cache.Close()

			var wg sync.WaitGroup
			for i := range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, cache.Put(ctx, "shared", []core.Item{{ID: i}}))
				}()
			}
			wg.Wait()

			got, ok, err := cache.Get(ctx, "shared")
			require.NoError(t, err)
			require.True(t, ok)
			require.Len(t, got, 1)

			// Whoever won, later reads keep returning the same entry.
			again, _, _ := cache.Get(ctx, "shared")
			assert.Equal(t, got, again)
			assert.Equal(t, 1, cache.Len())
		})
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRUCache(2)
	require.NoError(t, err)
	defer cache.Close()

	for i := range 2 {
		require.NoError(t, cache.Put(ctx, core.Query(fmt.Sprintf("q%d", i)), []core.Item{{ID: i}}))
	}

	// Touch q0 so q1 becomes the eviction candidate.
	_, ok, err := cache.Get(ctx, "q0")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, cache.Put(ctx, "q2", []core.Item{{ID: 2}}))
	assert.Equal(t, 2, cache.Len())

	_, ok, _ = cache.Get(ctx, "q1")
	assert.False(t, ok)
	_, ok, _ = cache.Get(ctx, "q0")
	assert.True(t, ok)
	_, ok, _ = cache.Get(ctx, "q2")
	assert.True(t, ok)
}

func TestNewLRUCache_InvalidCapacity(t *testing.T) {
	_, err := NewLRUCache(0)
	assert.ErrorIs(t, err, storage.ErrInvalidCapacity)
}
