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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/poiesic/searchpipe"
	"github.com/poiesic/searchpipe/config"
	"github.com/poiesic/searchpipe/metrics"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "searchpipe",
		Usage: "Search-as-you-type product search over a reactive query pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				Value:   "searchpipe.toml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
			},
		},
		Before: setupLogger,
		After:  closeLogFile,
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "Search interactively",
				Action: tuiCommand,
			},
			{
				Name:   "run",
				Usage:  "Read query text from stdin and print view models as JSON lines",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "keystroke-delay",
						Usage: "Type each line one character at a time with this delay (0 sets whole lines)",
						Value: 0,
					},
					&cli.BoolFlag{
						Name:  "in-stock",
						Usage: "Only show items with positive stock",
					},
					&cli.DurationFlag{
						Name:  "linger",
						Usage: "Keep printing results for this long after input ends",
						Value: 2 * time.Second,
					},
				},
			},
		},
	}
}

var logFile *os.File

// loadConfig reads the configuration file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	if c.IsSet("metrics-addr") {
		cfg.Metrics.Addr = c.String("metrics-addr")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so it only logs to a file.
	var out io.Writer = os.Stderr
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		out = f
	case c.Args().First() == "tui":
		out = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func closeLogFile(_ *cli.Context) error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// appConfig returns the configuration loaded by setupLogger.
func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// openSession creates a session and starts the metrics endpoint if configured.
// The returned function stops both.
func openSession(cfg *config.Config) (*searchpipe.Session, func(), error) {
	session, err := searchpipe.NewSession(searchpipe.WithConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	if cfg.Metrics.Addr == "" {
		return session, func() { session.Close() }, nil
	}

	srv := &http.Server{Addr: cfg.Metrics.Addr, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metrics.Serve(srv, session.Gatherer()); err != nil {
			slog.Error("metrics server failed", "addr", cfg.Metrics.Addr, "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", cfg.Metrics.Addr)

	return session, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("metrics server shutdown", "err", err)
		}
		session.Close()
	}, nil
}
