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


package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/searchpipe/catalog"
	"github.com/poiesic/searchpipe/pipeline"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendLRU    = "lru"
	BackendBadger = "badger"
)

// Duration is a time.Duration written as a string such as "300ms" or "10s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText formats the duration using time.Duration's String.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
	Cache    CacheConfig    `toml:"cache"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// PipelineConfig tunes the query pipeline.
type PipelineConfig struct {
	// Debounce is the quiet period after the last keystroke.
	// Default: 300ms
	Debounce Duration `toml:"debounce"`

	// CacheLatency is the delay applied to cache hits.
	// Default: 150ms
	CacheLatency Duration `toml:"cache_latency"`

	// PoolSize bounds concurrent catalog searches. Zero means one per CPU.
	PoolSize int `toml:"pool_size"`

	// InitialQuery is the query text present before any typing.
	InitialQuery string `toml:"initial_query"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	// Backend is one of "memory", "lru" or "badger".
	// Default: "memory"
	Backend string `toml:"backend"`

	// Capacity bounds the number of entries of the "lru" backend.
	// Default: 1024
	Capacity int `toml:"capacity"`
}

// CatalogConfig configures the products API client.
type CatalogConfig struct {
	BaseURL   string   `toml:"base_url"`
	Timeout   Duration `toml:"timeout"`
	RateLimit float64  `toml:"rate_limit"`
	Burst     int      `toml:"burst"`
	UserAgent string   `toml:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	// Default: "info"
	Level string `toml:"level"`

	// File receives log output when set.
	File string `toml:"file"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	cat := catalog.DefaultConfig()
	return &Config{
		Pipeline: PipelineConfig{
			Debounce:     Duration(pipeline.DefaultDebounce),
			CacheLatency: Duration(pipeline.DefaultCacheLatency),
		},
		Cache: CacheConfig{
			Backend:  BackendMemory,
			Capacity: 1024,
		},
		Catalog: CatalogConfig{
			BaseURL:   cat.BaseURL,
			Timeout:   Duration(cat.Timeout),
			RateLimit: cat.RateLimit,
			Burst:     cat.Burst,
			UserAgent: cat.UserAgent,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration at path on top of the defaults.
// A missing file yields the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Pipeline.Debounce < 0 {
		return errors.New("config: pipeline.debounce cannot be negative")
	}
	if c.Pipeline.CacheLatency < 0 {
		return errors.New("config: pipeline.cache_latency cannot be negative")
	}
	if c.Pipeline.PoolSize < 0 {
		return errors.New("config: pipeline.pool_size cannot be negative")
	}

	switch c.Cache.Backend {
	case BackendMemory, BackendBadger:
	case BackendLRU:
		if c.Cache.Capacity < 1 {
			return errors.New("config: cache.capacity must be at least 1 for the lru backend")
		}
	default:
		return fmt.Errorf("config: %w %q", ErrUnknownBackend, c.Cache.Backend)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := c.CatalogConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// CatalogConfig converts the [catalog] table into a catalog.Config.
func (c *Config) CatalogConfig() *catalog.Config {
	return catalog.NewConfig(
		catalog.WithBaseURL(c.Catalog.BaseURL),
		catalog.WithTimeout(c.Catalog.Timeout.Std()),
		catalog.WithRateLimit(c.Catalog.RateLimit, c.Catalog.Burst),
		catalog.WithUserAgent(c.Catalog.UserAgent),
	)
}

// PipelineOptions converts the [pipeline] table into pipeline options.
func (c *Config) PipelineOptions() []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithDebounce(c.Pipeline.Debounce.Std()),
		pipeline.WithCacheLatency(c.Pipeline.CacheLatency.Std()),
	}
	if c.Pipeline.PoolSize > 0 {
		opts = append(opts, pipeline.WithPoolSize(c.Pipeline.PoolSize))
	}
	if c.Pipeline.InitialQuery != "" {
		opts = append(opts, pipeline.WithInitialQuery(c.Pipeline.InitialQuery))
	}
	return opts
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w %q: must be one of debug, info, warn, error", ErrInvalidLevel, name)
	}
}
