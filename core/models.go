package core

import (
	"encoding/hex"
	"slices"

	"github.com/go-crypt/x/blake2b"
	"github.com/spf13/cast"
)

// Query is normalized search text. It is the unit of deduplication and caching;
// two queries are the same query only if their strings are equal.
type Query string

// Digest returns a deterministic hex digest of the query using BLAKE2b hashing.
// Storage backends use it to build fixed-width keys.
func (q Query) Digest() string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(q))
	return hex.EncodeToString(h.Sum(nil))
}

// Item is a single product returned by a search.
type Item struct {
	ID    int
	Title string
	Price float64
	Stock int
}

// InStock reports whether at least one unit is available.
func (i Item) InStock() bool {
	return i.Stock > 0
}

// RawRecord is a loosely typed record as returned by a search backend.
// Recognized keys are "id", "title", "price" and "stock".
type RawRecord map[string]any

// ItemFromRecord converts a raw record into an Item.
// Records are passed through without validation: absent or unconvertible
// fields become zero values.
func ItemFromRecord(r RawRecord) Item {
	return Item{
		ID:    cast.ToInt(r["id"]),
		Title: cast.ToString(r["title"]),
		Price: cast.ToFloat64(r["price"]),
		Stock: cast.ToInt(r["stock"]),
	}
}

// ItemsFromRecords converts raw records into Items, preserving order.
// The result is never nil.
func ItemsFromRecords(records []RawRecord) []Item {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, ItemFromRecord(r))
	}
	return items
}

// FilterItems returns the items to display for the given filter state.
// With inStockOnly unset the input is returned as is; otherwise the
// order-preserving subsequence of items with positive stock is returned.
func FilterItems(items []Item, inStockOnly bool) []Item {
	if !inStockOnly {
		return items
	}
	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if item.InStock() {
			filtered = append(filtered, item)
		}
	}
	return slices.Clip(filtered)
}

// CacheEntry maps a Query to the ordered items fetched for it.
// Entries are created on the first successful fetch and never mutated.
type CacheEntry struct {
	Query Query
	Items []Item
}

// ViewModel is the value delivered to consumers of a pipeline.
// Query is the query whose results Items were filtered from.
type ViewModel struct {
	Query       Query
	Items       []Item
	InStockOnly bool
}

// Status carries the loading and error observation points of a pipeline.
// Error is empty unless the most recent fetch failed.
type Status struct {
	Loading bool
	Error   string
}
