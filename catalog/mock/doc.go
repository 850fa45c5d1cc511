// Package mock provides a test double implementation of catalog.Searcher.
//
// The mock allows tests to run without network access and to control
// response latency and failures per query.
//
// # Usage in Tests
//
//	// Static catalog
//	searcher := mock.NewSearcher(map[core.Query][]core.RawRecord{
//	    "phone": {{"id": 1, "title": "iPhone 9", "price": 549, "stock": 94}},
//	})
//
//	// Slow or failing queries
//	searcher.SetDelay("a", 200*time.Millisecond)
//	searcher.SetError("broken", errors.New("offline"))
//
//	// Custom behavior injection
//	searcher.SearchFunc = func(ctx context.Context, q core.Query) ([]core.RawRecord, error) {
//	    return nil, nil
//	}
//
//	// Check call counts
//	count := searcher.CallCount("phone")
package mock
