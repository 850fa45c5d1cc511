package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/searchpipe/catalog"
	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/storage"
	"github.com/poiesic/searchpipe/stream"
)

const (
	// DefaultDebounce is the quiet period after the last keystroke before a query runs.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultCacheLatency is the delay applied to results served from the cache.
	DefaultCacheLatency = 150 * time.Millisecond
)

// Pipeline turns raw query text and an in-stock toggle into a shared stream
// of view models.
//
// Query text is normalized, debounced and deduplicated, then resolved through
// the result cache or the searcher. Only the most recently issued query may
// produce results. The resolved items are combined with the toggle and
// multicast to all subscribers.
type Pipeline struct {
	id       string
	cache    storage.ResultCache
	fetcher  *fetcher
	poolSize int
	debounce time.Duration
	latency  time.Duration
	monitor  Monitor
	logger   *slog.Logger

	text    *stream.Value[string]
	filter  *stream.Value[bool]
	status  *stream.Value[core.Status]
	results *stream.Shared[resolved]
	views   *stream.Shared[core.ViewModel]
}

// resolved is an accepted outcome: the items shown for query.
type resolved struct {
	query core.Query
	items []core.Item
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent searches.
// Default is runtime.NumCPU().
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidPoolSize
		}
		p.poolSize = size
		return nil
	}
}

// WithDebounce sets the quiet period applied to query text.
// Default is DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return ErrInvalidDuration
		}
		p.debounce = d
		return nil
	}
}

// WithCacheLatency sets the delay applied to cache hits.
// Default is DefaultCacheLatency.
func WithCacheLatency(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return ErrInvalidDuration
		}
		p.latency = d
		return nil
	}
}

// WithMonitor sets a monitor receiving execution events.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		p.monitor = monitor
		p.fetcher.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithInitialQuery sets the query text present before the first keystroke.
// Default is the empty string.
func WithInitialQuery(text string) Option {
	return func(p *Pipeline) error {
		p.text.Set(text)
		return nil
	}
}

// antsLogger adapts slog.Logger to the ants.Logger interface.
type antsLogger struct {
	logger *slog.Logger
}

func (l antsLogger) Printf(format string, args ...any) {
	l.logger.Warn("worker pool", "msg", fmt.Sprintf(format, args...))
}

func newPool(size int, logger *slog.Logger) (*ants.Pool, error) {
	return ants.NewPool(size, ants.WithLogger(antsLogger{logger: logger}))
}

// NewPipeline creates a query pipeline resolving queries through cache and searcher.
// Nothing runs until the first subscription.
func NewPipeline(cache storage.ResultCache, searcher catalog.Searcher, opts ...Option) (*Pipeline, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}

	monitor := &noopMonitor{}
	p := &Pipeline{
		id:    uuid.NewString(),
		cache: cache,
		fetcher: &fetcher{
			searcher: searcher,
			monitor:  monitor,
		},
		poolSize: poolSize,
		debounce: DefaultDebounce,
		latency:  DefaultCacheLatency,
		monitor:  monitor,
		logger:   slog.Default(),
		text:     stream.NewValueOf(""),
		filter:   stream.NewValueOf(false),
		status:   stream.NewValueOf(core.Status{}),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			return nil, optErr
		}
	}

	// Create the pool after options are applied (so it gets the final config)
	p.logger = p.logger.With("pipeline", p.id)
	pool, err := newPool(p.poolSize, p.logger)
	if err != nil {
		return nil, err
	}
	p.fetcher.pool = pool

	p.results = stream.NewShared(p.runQueries)
	p.views = stream.NewShared(p.combine)
	return p, nil
}

// ID returns the unique identifier of this pipeline, used in log records.
func (p *Pipeline) ID() string {
	return p.id
}

// SetQuery records new raw query text, as typed by the user.
func (p *Pipeline) SetQuery(text string) {
	p.text.Set(text)
}

// Query returns the current raw query text.
func (p *Pipeline) Query() string {
	text, _ := p.text.Current()
	return text
}

// SetInStockOnly updates the in-stock filter. Subscribers see the change immediately.
func (p *Pipeline) SetInStockOnly(on bool) {
	p.filter.Set(on)
}

// InStockOnly returns the current in-stock filter state.
func (p *Pipeline) InStockOnly() bool {
	on, _ := p.filter.Current()
	return on
}

// InStockOnlyChanges returns the filter state followed by every change.
// The channel is closed once ctx is done.
func (p *Pipeline) InStockOnlyChanges(ctx context.Context) <-chan bool {
	return p.filter.Subscribe(ctx)
}

// Status returns the current status followed by every status change.
// The channel is closed once ctx is done.
func (p *Pipeline) Status(ctx context.Context) <-chan core.Status {
	return p.status.Subscribe(ctx)
}

// CurrentStatus returns the latest status.
func (p *Pipeline) CurrentStatus() core.Status {
	s, _ := p.status.Current()
	return s
}

// Results subscribes to the resolved, unfiltered items of the latest query.
// The query loop starts with the first subscriber, across Results and
// ViewModels, and stops when the last one leaves.
func (p *Pipeline) Results(ctx context.Context) <-chan []core.Item {
	return stream.Map(ctx, p.results.Subscribe(ctx), func(r resolved) []core.Item {
		return r.items
	})
}

// ViewModels subscribes to the view model stream. Late subscribers receive the
// most recent view model immediately. The channel is closed once ctx is done.
func (p *Pipeline) ViewModels(ctx context.Context) <-chan core.ViewModel {
	return p.views.Subscribe(ctx)
}

// Subscribers returns the number of active view model subscribers.
func (p *Pipeline) Subscribers() int {
	return p.views.Subscribers()
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.fetcher.pool != nil {
		p.fetcher.pool.Release()
	}
}

// runQueries is the query loop. It owns the debounce and deduplication state
// and the executor for one run; all of it is discarded when the run ends.
func (p *Pipeline) runQueries(ctx context.Context, emit func(resolved)) {
	exec := newExecutor(p.fetcher, p.cache, p.latency, p.monitor, p.logger)
	logger := p.logger

	texts := p.text.Subscribe(ctx)
	queries := stream.Distinct(ctx,
		stream.Debounce(ctx,
			stream.Map(ctx, texts, core.Normalize),
			p.debounce))
	outcomes := make(chan outcome)

	logger.Debug("query loop started")
	defer func() {
		p.status.Update(func(s core.Status) core.Status {
			s.Loading = false
			return s
		})
		logger.Debug("query loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-queries:
			if !ok {
				return
			}
			p.status.Set(core.Status{Loading: true})
			token := exec.execute(ctx, q, outcomes)
			logger.Debug("query issued", "query", q, "token", token)
		case o := <-outcomes:
			items, ok := exec.accept(ctx, o)
			if !ok {
				continue
			}
			emit(resolved{query: o.query, items: items})
			status := core.Status{}
			if o.err != nil {
				status.Error = core.FetchErrorMessage
			}
			p.status.Set(status)
		}
	}
}

// combine joins the latest results with the filter state.
func (p *Pipeline) combine(ctx context.Context, emit func(core.ViewModel)) {
	results := p.results.Subscribe(ctx)
	filter := p.filter.Subscribe(ctx)
	views := stream.CombineLatest(ctx, results, filter, func(r resolved, inStockOnly bool) core.ViewModel {
		return core.ViewModel{
			Query:       r.query,
			Items:       core.FilterItems(r.items, inStockOnly),
			InStockOnly: inStockOnly,
		}
	})
	for vm := range views {
		emit(vm)
	}
}
