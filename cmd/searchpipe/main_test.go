package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/poiesic/searchpipe/catalog/mock"
	"github.com/poiesic/searchpipe/config"
	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/pipeline"
	"github.com/poiesic/searchpipe/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	require.FailNow(t, "command not found", name)
	return nil
}

func TestGlobalFlags(t *testing.T) {
	app := newApp()

	t.Run("log-level defaults to info", func(t *testing.T) {
		var levelFlag *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "log-level" {
				levelFlag = f
				break
			}
		}
		require.NotNil(t, levelFlag)
		assert.Equal(t, "info", levelFlag.Value)
		assert.Equal(t, []string{"l"}, levelFlag.Aliases)
	})

	t.Run("metrics-addr has no default", func(t *testing.T) {
		var addrFlag *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "metrics-addr" {
				addrFlag = f
				break
			}
		}
		require.NotNil(t, addrFlag)
		assert.Empty(t, addrFlag.Value)
		assert.Empty(t, addrFlag.EnvVars)
	})
}

func TestRunCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "run")

	t.Run("linger has default value of 2s", func(t *testing.T) {
		var lingerFlag *cli.DurationFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.DurationFlag); ok && f.Name == "linger" {
				lingerFlag = f
				break
			}
		}
		require.NotNil(t, lingerFlag)
		assert.Equal(t, 2*time.Second, lingerFlag.Value)
	})

	t.Run("keystroke-delay defaults to whole lines", func(t *testing.T) {
		var delayFlag *cli.DurationFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.DurationFlag); ok && f.Name == "keystroke-delay" {
				delayFlag = f
				break
			}
		}
		require.NotNil(t, delayFlag)
		assert.Zero(t, delayFlag.Value)
	})
}

func TestInvalidLogLevel(t *testing.T) {
	app := newApp()
	app.Commands = []*cli.Command{{Name: "noop", Action: func(*cli.Context) error { return nil }}}

	path := filepath.Join(t.TempDir(), "absent.toml")
	err := app.Run([]string{"searchpipe", "--config", path, "--log-level", "loud", "noop"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchpipe.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cache]\nbackend = \"lru\"\ncapacity = 8\n\n[metrics]\naddr = \":9100\"\n"), 0o644))

	var loaded *config.Config
	app := newApp()
	app.Commands = []*cli.Command{{
		Name: "noop",
		Action: func(c *cli.Context) error {
			loaded = appConfig(c)
			return nil
		},
	}}

	err := app.Run([]string{"searchpipe", "--config", path, "--log-level", "warn", "--metrics-addr", ":9200", "noop"})
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, config.BackendLRU, loaded.Cache.Backend)
	assert.Equal(t, 8, loaded.Cache.Capacity)
	assert.Equal(t, "warn", loaded.Log.Level)
	assert.Equal(t, ":9200", loaded.Metrics.Addr)
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	searcher := mock.NewSearcher(map[core.Query][]core.RawRecord{
		"":      {{"id": 1, "title": "Mascara", "price": 9.99, "stock": 0}, {"id": 2, "title": "Palette", "price": 19.99, "stock": 3}},
		"phone": {{"id": 10, "title": "iPhone 9", "price": 549, "stock": 94}},
	})
	p, err := pipeline.NewPipeline(memory.NewCache(), searcher,
		pipeline.WithDebounce(20*time.Millisecond),
		pipeline.WithCacheLatency(10*time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestFeedAndPrint(t *testing.T) {
	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())

	var out bytes.Buffer
	printed := printViews(ctx, &out, p)

	require.NoError(t, feedQueries(ctx, strings.NewReader("pho\nPhone\n"), p, 2*time.Millisecond))
	assert.Equal(t, "Phone", p.Query())

	time.Sleep(300 * time.Millisecond)
	cancel()
	<-printed

	var last viewLine
	scanner := bufio.NewScanner(&out)
	lines := 0
	for scanner.Scan() {
		last = viewLine{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &last))
		if last.Query == "" {
			assert.Len(t, last.Items, 2, "lines are labelled with the query that produced them")
		}
		lines++
	}
	require.NotZero(t, lines)
	assert.Equal(t, "phone", last.Query)
	require.Len(t, last.Items, 1)
	assert.Equal(t, 10, last.Items[0].ID)
	assert.Empty(t, last.Error)
}

func TestModel_KeysDrivePipeline(t *testing.T) {
	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newModel(ctx, p)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(model)
	assert.Equal(t, "p", p.Query())

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(model)
	assert.True(t, p.InStockOnly())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_View(t *testing.T) {
	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newModel(ctx, p)
	assert.Contains(t, m.View(), "Waiting for results")

	updated, _ := m.Update(viewMsg(core.ViewModel{
		Items:       []core.Item{{ID: 2, Title: "Palette", Price: 19.99, Stock: 3}},
		InStockOnly: true,
	}))
	m = updated.(model)
	updated, _ = m.Update(statusMsg(core.Status{Error: core.FetchErrorMessage}))
	m = updated.(model)

	view := m.View()
	assert.Contains(t, view, "Palette")
	assert.Contains(t, view, "in stock only")
	assert.Contains(t, view, core.FetchErrorMessage)

	updated, _ = m.Update(viewMsg(core.ViewModel{Items: []core.Item{}}))
	m = updated.(model)
	assert.Contains(t, m.View(), "No products found")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
