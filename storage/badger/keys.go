package badger

import (
	"github.com/poiesic/searchpipe/core"
)

// Key prefixes for different data types
const (
	cacheEntryPrefix = "qcache:"
)

// makeCacheEntryKey generates a key for a cache entry.
// Format: prefix + hex BLAKE2b digest of the query.
func makeCacheEntryKey(q core.Query) []byte {
	return []byte(cacheEntryPrefix + q.Digest())
}
