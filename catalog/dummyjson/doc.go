// Package dummyjson implements catalog.Searcher against the DummyJSON
// products API (GET {base}/products/search?q={query}).
//
// The client is safe for concurrent use. Requests are paced by a token
// bucket limiter and bounded by the configured timeout.
package dummyjson
