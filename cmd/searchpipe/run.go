package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/pipeline"
	"github.com/urfave/cli/v2"
)

// viewLine is the JSON form of one view model.
type viewLine struct {
	Query       string     `json:"query"`
	InStockOnly bool       `json:"in_stock_only"`
	Error       string     `json:"error,omitempty"`
	Items       []itemLine `json:"items"`
}

type itemLine struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func newViewLine(vm core.ViewModel, status core.Status) viewLine {
	items := make([]itemLine, 0, len(vm.Items))
	for _, item := range vm.Items {
		items = append(items, itemLine{ID: item.ID, Title: item.Title, Price: item.Price, Stock: item.Stock})
	}
	return viewLine{
		Query:       string(vm.Query),
		InStockOnly: vm.InStockOnly,
		Error:       status.Error,
		Items:       items,
	}
}

func runCommand(c *cli.Context) error {
	session, stop, err := openSession(appConfig(c))
	if err != nil {
		return err
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p := session.Pipeline()
	p.SetInStockOnly(c.Bool("in-stock"))

	printed := printViews(ctx, c.App.Writer, p)

	err = feedQueries(ctx, c.App.Reader, p, c.Duration("keystroke-delay"))

	select {
	case <-time.After(c.Duration("linger")):
	case <-ctx.Done():
	}
	cancel()
	<-printed

	return err
}

// printViews writes every view model as a JSON line until ctx is done.
// The returned channel is closed once printing stops.
func printViews(ctx context.Context, w io.Writer, p *pipeline.Pipeline) <-chan struct{} {
	views := p.ViewModels(ctx)
	enc := json.NewEncoder(w)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for vm := range views {
			if err := enc.Encode(newViewLine(vm, p.CurrentStatus())); err != nil {
				return
			}
		}
	}()
	return done
}

// feedQueries sets each input line as the query text. With a positive delay
// lines are typed one character at a time.
func feedQueries(ctx context.Context, r io.Reader, p *pipeline.Pipeline, delay time.Duration) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if delay <= 0 {
			p.SetQuery(line)
			continue
		}
		runes := []rune(line)
		for i := 1; i <= len(runes); i++ {
			p.SetQuery(string(runes[:i]))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
		}
	}
	return scanner.Err()
}
