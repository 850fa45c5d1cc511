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


package searchpipe

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/searchpipe/catalog"
	"github.com/poiesic/searchpipe/catalog/dummyjson"
	"github.com/poiesic/searchpipe/config"
	"github.com/poiesic/searchpipe/metrics"
	"github.com/poiesic/searchpipe/pipeline"
	"github.com/poiesic/searchpipe/storage"
	"github.com/poiesic/searchpipe/storage/badger"
	"github.com/poiesic/searchpipe/storage/memory"
	"github.com/prometheus/client_golang/prometheus"
)

// Session wires a pipeline to its cache, catalog and metrics.
type Session struct {
	backend  *badger.Backend
	cache    storage.ResultCache
	searcher catalog.Searcher
	pipeline *pipeline.Pipeline
	registry *prometheus.Registry
	logger   *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	config   *config.Config
	searcher catalog.Searcher
	logger   *slog.Logger
}

// WithConfig sets the application configuration.
// Default is config.Default().
func WithConfig(cfg *config.Config) SessionOption {
	return func(o *sessionOptions) {
		o.config = cfg
	}
}

// WithSearcher replaces the configured catalog client.
func WithSearcher(searcher catalog.Searcher) SessionOption {
	return func(o *sessionOptions) {
		o.searcher = searcher
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// NewSession builds the cache, catalog client, metrics and pipeline described
// by the configuration. The pipeline is idle until its first subscriber.
func NewSession(opts ...SessionOption) (*Session, error) {
	options := &sessionOptions{
		config: config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	cfg := options.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		registry: prometheus.NewRegistry(),
		logger:   options.logger,
	}

	var err error
	s.cache, s.backend, err = openCache(cfg.Cache, s.logger)
	if err != nil {
		return nil, err
	}

	s.searcher = options.searcher
	if s.searcher == nil {
		s.searcher, err = dummyjson.NewClient(cfg.CatalogConfig(), dummyjson.WithLogger(s.logger))
		if err != nil {
			s.closeStorage()
			return nil, fmt.Errorf("failed to create catalog client: %w", err)
		}
	}

	pipelineOpts := append(cfg.PipelineOptions(),
		pipeline.WithMonitor(metrics.NewMonitor(s.registry)),
		pipeline.WithLogger(s.logger),
	)
	s.pipeline, err = pipeline.NewPipeline(s.cache, s.searcher, pipelineOpts...)
	if err != nil {
		s.closeStorage()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	s.logger.Debug("session ready",
		"pipeline", s.pipeline.ID(),
		"cache", cfg.Cache.Backend,
		"catalog", cfg.Catalog.BaseURL)
	return s, nil
}

func openCache(cfg config.CacheConfig, logger *slog.Logger) (storage.ResultCache, *badger.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewCache(), nil, nil
	case config.BackendLRU:
		cache, err := memory.NewLRUCache(cfg.Capacity, memory.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return cache, nil, nil
	case config.BackendBadger:
		backend, err := badger.OpenBackend(badger.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open cache backend: %w", err)
		}
		cache, err := badger.NewCache(backend)
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		return cache, backend, nil
	default:
		return nil, nil, fmt.Errorf("%w %q", config.ErrUnknownBackend, cfg.Backend)
	}
}

// Pipeline returns the session's query pipeline.
func (s *Session) Pipeline() *pipeline.Pipeline {
	return s.pipeline
}

// Cache returns the result cache.
func (s *Session) Cache() storage.ResultCache {
	return s.cache
}

// Gatherer returns the registry holding the session's metrics.
func (s *Session) Gatherer() prometheus.Gatherer {
	return s.registry
}

// Close releases the pipeline and closes the cache.
func (s *Session) Close() error {
	s.pipeline.Release()
	return s.closeStorage()
}

func (s *Session) closeStorage() error {
	if err := s.cache.Close(); err != nil {
		s.logger.Error("error closing result cache", "err", err)
		return err
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing cache backend", "err", err)
			return err
		}
	}
	return nil
}
