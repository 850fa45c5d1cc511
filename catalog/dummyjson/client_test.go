package dummyjson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/searchpipe/catalog"
	"github.com/poiesic/searchpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...catalog.ConfigOption) catalog.Searcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfgOpts := append([]catalog.ConfigOption{
		catalog.WithBaseURL(server.URL),
		catalog.WithRateLimit(0, 0),
	}, opts...)
	client, err := NewClient(catalog.NewConfig(cfgOpts...))
	require.NoError(t, err)
	return client
}

func TestSearch_DecodesProducts(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [
				{"id": 1, "title": "iPhone 9", "price": 549, "stock": 94, "brand": "Apple"},
				{"id": 2, "title": "iPhone X", "price": 899.5, "stock": 0}
			],
			"total": 2, "skip": 0, "limit": 30
		}`))
	})

	records, err := client.Search(context.Background(), "iphone")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/products/search", gotPath)
	assert.Equal(t, "iphone", gotQuery)

	items := core.ItemsFromRecords(records)
	assert.Equal(t, []core.Item{
		{ID: 1, Title: "iPhone 9", Price: 549, Stock: 94},
		{ID: 2, Title: "iPhone X", Price: 899.5, Stock: 0},
	}, items)
}

func TestSearch_EscapesQuery(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"products": []}`))
	})

	_, err := client.Search(context.Background(), "smart phone & case?")
	require.NoError(t, err)
	assert.Equal(t, "smart phone & case?", gotQuery)
}

func TestSearch_MissingProductsIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 0}`))
	})

	records, err := client.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: catalog.ErrUnexpectedStatus,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			wantErr: catalog.ErrUnexpectedStatus,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"products": [`))
			},
			wantErr: catalog.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			records, err := client.Search(context.Background(), "q")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, records)
		})
	}
}

func TestSearch_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, catalog.WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := client.Search(context.Background(), "slow")
	assert.Error(t, err)
}

func TestSearch_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products": []}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Search(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewClient(catalog.NewConfig(catalog.WithBaseURL("")))
		assert.Error(t, err)
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		searcher, err := NewClient(nil)
		require.NoError(t, err)
		client := searcher.(*Client)
		assert.Equal(t, "https://dummyjson.com/products/search?q=phone", client.SearchURL("phone"))
		assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
	})

	t.Run("nil http client rejected", func(t *testing.T) {
		_, err := NewClient(catalog.DefaultConfig(), WithHTTPClient(nil))
		assert.Error(t, err)
	})

	t.Run("custom http client keeps its timeout", func(t *testing.T) {
		hc := &http.Client{Timeout: time.Minute}
		searcher, err := NewClient(catalog.DefaultConfig(), WithHTTPClient(hc))
		require.NoError(t, err)
		assert.Equal(t, time.Minute, searcher.(*Client).httpClient.Timeout)
	})

	t.Run("shared http client is not modified", func(t *testing.T) {
		hc := &http.Client{}
		searcher, err := NewClient(catalog.DefaultConfig(), WithHTTPClient(hc))
		require.NoError(t, err)
		assert.Zero(t, hc.Timeout)
		assert.Equal(t, 10*time.Second, searcher.(*Client).httpClient.Timeout)
		assert.NotSame(t, hc, searcher.(*Client).httpClient)
	})

	t.Run("base url is normalized", func(t *testing.T) {
		cfg := catalog.NewConfig(catalog.WithBaseURL("  https://dummyjson.com/ "))
		searcher, err := NewClient(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://dummyjson.com/products/search?q=a", searcher.(*Client).SearchURL("a"))
	})
}
