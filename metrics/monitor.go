package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "searchpipe"

// Status label values.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// Monitor records pipeline events in Prometheus collectors.
// Query text is never used as a label.
type Monitor struct {
	queries   prometheus.Counter
	cacheHits prometheus.Counter
	misses    prometheus.Counter
	fetches   *prometheus.CounterVec
	resolved  *prometheus.CounterVec
	failures  prometheus.Counter
	stale     prometheus.Counter
	latency   *prometheus.HistogramVec
	itemCount prometheus.Histogram
}

var _ pipeline.Monitor = (*Monitor)(nil)

// NewMonitor creates a Monitor whose collectors are registered with reg.
// A nil reg leaves the collectors unregistered.
// It panics if the collectors are already registered with reg.
func NewMonitor(reg prometheus.Registerer) *Monitor {
	factory := promauto.With(reg)
	return &Monitor{
		queries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "issued_total",
			Help:      "Total number of distinct queries issued",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of queries served from the result cache",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of queries sent to the catalog",
		}),
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetches_total",
			Help:      "Total number of catalog searches",
		}, []string{"status"}),
		resolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "resolved_total",
			Help:      "Total number of queries whose results were shown",
		}, []string{"source"}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "failures_total",
			Help:      "Total number of queries that fell back to an empty result",
		}),
		stale: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "stale_dropped_total",
			Help:      "Total number of superseded results discarded",
		}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetch_duration_seconds",
			Help:      "Catalog search duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"status"}),
		itemCount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "result_items",
			Help:      "Number of items in resolved results",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

func (m *Monitor) QueryIssued(_ core.Query) {
	m.queries.Inc()
}

func (m *Monitor) CacheHit(_ core.Query) {
	m.cacheHits.Inc()
}

func (m *Monitor) FetchStarted(_ core.Query) {
	m.misses.Inc()
}

// FetchFinished is called once per search actually sent to the catalog.
// Coalesced queries report a single fetch.
func (m *Monitor) FetchFinished(_ core.Query, elapsed time.Duration, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.fetches.WithLabelValues(status).Inc()
	m.latency.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *Monitor) Resolved(_ core.Query, items int, cached bool) {
	source := "catalog"
	if cached {
		source = "cache"
	}
	m.resolved.WithLabelValues(source).Inc()
	m.itemCount.Observe(float64(items))
}

func (m *Monitor) Failed(_ core.Query, _ error) {
	m.failures.Inc()
}

func (m *Monitor) StaleDropped(_ core.Query) {
	m.stale.Inc()
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve runs srv with the metrics gathered by g mounted at /metrics.
// It blocks until the server stops. A graceful shutdown returns nil.
func Serve(srv *http.Server, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv.Handler = mux
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
