package catalog

import (
	"context"

	"github.com/poiesic/searchpipe/core"
)

// Searcher looks up products matching a query.
// Implementations must be thread-safe for concurrent use.
type Searcher interface {
	// Search returns the raw records matching q in backend order.
	// Returns an empty slice if nothing matches.
	// Returns an error if the backend cannot be reached or answers with
	// something other than a result set.
	Search(ctx context.Context, q core.Query) ([]core.RawRecord, error)
}
