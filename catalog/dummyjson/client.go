package dummyjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/poiesic/searchpipe/catalog"
	"github.com/poiesic/searchpipe/core"
	"golang.org/x/time/rate"
)

const searchPath = "/products/search"

// Client implements catalog.Searcher using the DummyJSON HTTP API.
type Client struct {
	config     *catalog.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ catalog.Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the HTTP client used for requests.
// The client is copied; if it has no timeout the copy gets the configured one.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("dummyjson: http client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// searchResponse is the subset of the search payload the client reads.
type searchResponse struct {
	Products []core.RawRecord `json:"products"`
}

// NewClient creates a DummyJSON search client.
// The config is validated before use; Validate also normalizes it.
//
// Returns catalog.Searcher interface (not *Client) to keep callers
// independent of the HTTP implementation.
func NewClient(config *catalog.Config, opts ...Option) (catalog.Searcher, error) {
	if config == nil {
		config = catalog.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{},
		limiter:    config.Limiter(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.httpClient.Timeout == 0 {
		hc := *c.httpClient
		hc.Timeout = config.Timeout
		c.httpClient = &hc
	}
	c.logger = c.logger.With("component", "dummyjson-client")
	return c, nil
}

// SearchURL returns the request URL for q.
func (c *Client) SearchURL(q core.Query) string {
	return c.config.BaseURL + searchPath + "?q=" + url.QueryEscape(string(q))
}

// Search fetches the products matching q.
// A response without a products field yields an empty result.
func (c *Client) Search(ctx context.Context, q core.Query) ([]core.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(q), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnexpectedStatus, resp.Status)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrInvalidResponse, err)
	}
	if payload.Products == nil {
		payload.Products = []core.RawRecord{}
	}

	c.logger.Debug("search completed", "query", q, "products", len(payload.Products))
	return payload.Products, nil
}
