package mock

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/searchpipe/catalog"
	"github.com/poiesic/searchpipe/core"
)

// MockSearcher is a test double for catalog.Searcher.
// It is safe for concurrent use.
type MockSearcher struct {
	// SearchFunc is called by Search if set, after any configured delay.
	// If nil, results come from the static catalog.
	SearchFunc func(ctx context.Context, q core.Query) ([]core.RawRecord, error)

	mu      sync.Mutex
	records map[core.Query][]core.RawRecord
	delays  map[core.Query]time.Duration
	errs    map[core.Query]error
	calls   map[core.Query]int
	order   []core.Query
}

var _ catalog.Searcher = (*MockSearcher)(nil)

// NewSearcher creates a mock searcher answering from records.
// Unknown queries return an empty result.
func NewSearcher(records map[core.Query][]core.RawRecord) *MockSearcher {
	if records == nil {
		records = make(map[core.Query][]core.RawRecord)
	}
	return &MockSearcher{
		records: records,
		delays:  make(map[core.Query]time.Duration),
		errs:    make(map[core.Query]error),
		calls:   make(map[core.Query]int),
	}
}

// Search returns the configured result for q.
// A configured delay is honored unless ctx is done first.
func (m *MockSearcher) Search(ctx context.Context, q core.Query) ([]core.RawRecord, error) {
	m.mu.Lock()
	m.calls[q]++
	m.order = append(m.order, q)
	delay := m.delays[q]
	err := m.errs[q]
	records, ok := m.records[q]
	fn := m.SearchFunc
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fn != nil {
		return fn(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return []core.RawRecord{}, nil
	}
	return records, nil
}

// SetRecords replaces the result for q.
func (m *MockSearcher) SetRecords(q core.Query, records []core.RawRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[q] = records
}

// SetDelay makes searches for q take at least d.
func (m *MockSearcher) SetDelay(q core.Query, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[q] = d
}

// SetError makes searches for q fail with err. A nil err clears the failure.
func (m *MockSearcher) SetError(q core.Query, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, q)
		return
	}
	m.errs[q] = err
}

// CallCount returns how many times q was searched.
func (m *MockSearcher) CallCount(q core.Query) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[q]
}

// TotalCalls returns the number of searches across all queries.
func (m *MockSearcher) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Calls returns the searched queries in call order.
func (m *MockSearcher) Calls() []core.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Query(nil), m.order...)
}

// Reset clears call history and injected behavior. Static records are kept.
func (m *MockSearcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.calls)
	clear(m.delays)
	clear(m.errs)
	m.order = nil
	m.SearchFunc = nil
}
