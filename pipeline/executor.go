package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/searchpipe/catalog"
	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/storage"
	"golang.org/x/sync/singleflight"
)

// outcome is the resolution of one execution, tagged with its token.
type outcome struct {
	token  uint64
	query  core.Query
	items  []core.Item
	err    error
	cached bool
}

// fetcher runs searches on a worker pool and coalesces identical in-flight
// queries. It is shared by every run of a pipeline.
type fetcher struct {
	searcher catalog.Searcher
	pool     *ants.Pool
	group    singleflight.Group
	monitor  Monitor
}

// fetch searches for q and converts the records into items.
// Concurrent calls for the same query share one search.
func (f *fetcher) fetch(ctx context.Context, q core.Query) ([]core.Item, error) {
	v, err, _ := f.group.Do(string(q), func() (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrFetchPanicked, r)
			}
		}()

		start := time.Now()
		records, err := f.searcher.Search(ctx, q)
		f.monitor.FetchFinished(q, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		return core.ItemsFromRecords(records), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Item), nil
}

// executor resolves queries for a single run of the query loop.
// Every call to execute mints a new token; only the outcome carrying the
// latest token is accepted.
type executor struct {
	fetcher *fetcher
	cache   storage.ResultCache
	latency time.Duration
	token   atomic.Uint64
	monitor Monitor
	logger  *slog.Logger
}

func newExecutor(f *fetcher, cache storage.ResultCache, latency time.Duration, monitor Monitor, logger *slog.Logger) *executor {
	return &executor{
		fetcher: f,
		cache:   cache,
		latency: latency,
		monitor: monitor,
		logger:  logger,
	}
}

// execute starts resolving q and returns its token. The outcome is delivered
// on out asynchronously, never before execute returns. Delivery is abandoned
// once ctx is done.
//
// Searches wait for a free worker without blocking the caller. A search that
// is superseded while it waits is skipped. Searches already running are not
// aborted: they run on a context that ignores ctx's cancellation and their
// outcomes are discarded by accept.
func (e *executor) execute(ctx context.Context, q core.Query, out chan<- outcome) uint64 {
	token := e.token.Add(1)
	e.monitor.QueryIssued(q)

	items, ok, err := e.cache.Get(ctx, q)
	if err != nil {
		e.logger.Warn("cache lookup failed, fetching", "query", q, "err", err)
		ok = false
	}
	if ok {
		e.monitor.CacheHit(q)
		hit := outcome{token: token, query: q, items: items, cached: true}
		time.AfterFunc(e.latency, func() {
			deliver(ctx, out, hit)
		})
		return token
	}

	e.monitor.FetchStarted(q)
	fetchCtx := context.WithoutCancel(ctx)
	task := func() {
		if e.token.Load() != token {
			e.monitor.StaleDropped(q)
			e.logger.Debug("skipping superseded search", "query", q, "token", token)
			return
		}
		items, err := e.fetcher.fetch(fetchCtx, q)
		deliver(ctx, out, outcome{token: token, query: q, items: items, err: err})
	}
	go func() {
		if err := e.fetcher.pool.Submit(task); err != nil {
			deliver(ctx, out, outcome{token: token, query: q, err: fmt.Errorf("submit search: %w", err)})
		}
	}()
	return token
}

// current reports whether o belongs to the most recent execution.
func (e *executor) current(o outcome) bool {
	return o.token == e.token.Load()
}

// accept applies an outcome. Stale outcomes are dropped silently and reported
// as not accepted. Failed outcomes are accepted with an empty item list and
// are never cached; fresh successful ones are stored before being returned.
func (e *executor) accept(ctx context.Context, o outcome) ([]core.Item, bool) {
	if !e.current(o) {
		e.monitor.StaleDropped(o.query)
		e.logger.Debug("dropping stale result", "query", o.query, "token", o.token)
		return nil, false
	}

	if o.err != nil {
		e.monitor.Failed(o.query, o.err)
		e.logger.Warn("search failed", "query", o.query, "err", fmt.Errorf("%w: %w", core.ErrFetchFailed, o.err))
		return []core.Item{}, true
	}

	if !o.cached {
		if err := e.cache.Put(ctx, o.query, o.items); err != nil {
			e.logger.Warn("failed to cache result", "query", o.query, "err", err)
		}
	}
	e.monitor.Resolved(o.query, len(o.items), o.cached)
	return o.items, true
}

// deliver sends o on out unless ctx is done first.
func deliver(ctx context.Context, out chan<- outcome, o outcome) {
	if ctx.Err() != nil {
		return
	}
	select {
	case out <- o:
	case <-ctx.Done():
	}
}
