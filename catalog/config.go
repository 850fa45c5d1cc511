// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package catalog

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Config holds configuration for catalog search backends.
type Config struct {
	// BaseURL is the root of the products API.
	// Example: "https://dummyjson.com"
	BaseURL string

	// Timeout bounds a single search request, including reading the body.
	// Default: 10s
	Timeout time.Duration

	// RateLimit is the maximum sustained number of requests per second.
	// Zero disables rate limiting.
	// Default: 10
	RateLimit float64

	// Burst is the number of requests allowed to exceed RateLimit momentarily.
	// Default: 5
	Burst int

	// UserAgent is sent with every request.
	UserAgent string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the products API root.
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithRateLimit sets the sustained request rate and burst size.
func WithRateLimit(perSecond float64, burst int) ConfigOption {
	return func(c *Config) {
		c.RateLimit = perSecond
		c.Burst = burst
	}
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(userAgent string) ConfigOption {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// DefaultConfig returns a Config pointing at the public DummyJSON API.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://dummyjson.com",
		Timeout:   10 * time.Second,
		RateLimit: 10,
		Burst:     5,
		UserAgent: "searchpipe",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBaseURL("http://localhost:8080"),
//	    WithRateLimit(0, 0),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Surrounding whitespace and trailing slashes are removed from BaseURL.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return errors.New("catalog config: BaseURL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("catalog config: BaseURL must be an absolute URL")
	}
	if c.Timeout <= 0 {
		return errors.New("catalog config: Timeout must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("catalog config: RateLimit cannot be negative")
	}
	if c.RateLimit > 0 && c.Burst < 1 {
		return errors.New("catalog config: Burst must be at least 1 when rate limiting")
	}
	return nil
}

// Limiter returns a rate limiter for the configured request rate.
// Returns a limiter that never blocks when RateLimit is zero.
func (c *Config) Limiter() *rate.Limiter {
	if c.RateLimit == 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit), c.Burst)
}
