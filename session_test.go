package searchpipe

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/searchpipe/catalog/mock"
	"github.com/poiesic/searchpipe/config"
	"github.com/poiesic/searchpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	cfg := config.Default()
	cfg.Cache.Backend = backend
	cfg.Pipeline.Debounce = config.Duration(10 * time.Millisecond)
	cfg.Pipeline.CacheLatency = config.Duration(10 * time.Millisecond)
	return cfg
}

func TestNewSession_Backends(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendLRU, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			searcher := mock.NewSearcher(map[core.Query][]core.RawRecord{
				"phone": {{"id": 1, "title": "iPhone 9", "price": 549, "stock": 94}},
			})
			session, err := NewSession(WithConfig(testConfig(backend)), WithSearcher(searcher))
			require.NoError(t, err)
			defer session.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			p := session.Pipeline()
			p.SetQuery("Phone ")
			views := p.ViewModels(ctx)

			deadline := time.After(2 * time.Second)
			for {
				select {
				case vm := <-views:
					if len(vm.Items) == 1 {
						assert.Equal(t, "iPhone 9", vm.Items[0].Title)
						assert.Equal(t, 1, session.Cache().Len())
						return
					}
				case <-deadline:
					require.FailNow(t, "no results")
				}
			}
		})
	}
}

func TestNewSession_DefaultCatalogClient(t *testing.T) {
	session, err := NewSession()
	require.NoError(t, err)
	require.NotNil(t, session.searcher)
	assert.Nil(t, session.backend)
	assert.NotNil(t, session.Gatherer())
	assert.NoError(t, session.Close())
}

func TestNewSession_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "redis"

	session, err := NewSession(WithConfig(cfg))
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
	assert.Nil(t, session)
}

func TestSession_MetricsRegistered(t *testing.T) {
	session, err := NewSession(WithConfig(testConfig(config.BackendMemory)), WithSearcher(mock.NewSearcher(nil)))
	require.NoError(t, err)
	defer session.Close()

	families, err := session.Gatherer().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "searchpipe_query_issued_total")
	assert.Contains(t, names, "searchpipe_cache_hits_total")
}
