package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/searchpipe/core"
	"github.com/poiesic/searchpipe/pipeline"
	"github.com/urfave/cli/v2"
)

const maxRows = 20

type styles struct {
	Title   lipgloss.Style
	Filter  lipgloss.Style
	Loading lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
	Dim     lipgloss.Style
	Help    lipgloss.Style
}

func newStyles() styles {
	return styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Filter:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Loading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Header:  lipgloss.NewStyle().Bold(true).Underline(true),
		Dim:     lipgloss.NewStyle().Faint(true),
		Help:    lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}

type viewMsg core.ViewModel

type statusMsg core.Status

type streamClosedMsg struct{}

// model is the Bubble Tea model for interactive search. Keystrokes feed the
// pipeline's query text; view models and status arrive as messages.
type model struct {
	pipeline *pipeline.Pipeline
	input    textinput.Model
	views    <-chan core.ViewModel
	statuses <-chan core.Status
	styles   styles

	view   core.ViewModel
	status core.Status
	ready  bool
}

func newModel(ctx context.Context, p *pipeline.Pipeline) model {
	input := textinput.New()
	input.Placeholder = "Search products"
	input.Prompt = "> "
	input.CharLimit = 100
	input.SetValue(p.Query())
	input.Focus()

	return model{
		pipeline: p,
		input:    input,
		views:    p.ViewModels(ctx),
		statuses: p.Status(ctx),
		styles:   newStyles(),
	}
}

func waitForView(ch <-chan core.ViewModel) tea.Cmd {
	return func() tea.Msg {
		vm, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return viewMsg(vm)
	}
}

func waitForStatus(ch <-chan core.Status) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return statusMsg(s)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForView(m.views), waitForStatus(m.statuses))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.pipeline.SetInStockOnly(!m.pipeline.InStockOnly())
			return m, nil
		}
		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			m.pipeline.SetQuery(after)
		}
		return m, cmd

	case viewMsg:
		m.view = core.ViewModel(msg)
		m.ready = true
		return m, waitForView(m.views)

	case statusMsg:
		m.status = core.Status(msg)
		return m, waitForStatus(m.statuses)

	case streamClosedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("searchpipe"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	filter := "all items"
	if m.view.InStockOnly {
		filter = "in stock only"
	}
	b.WriteString(m.styles.Filter.Render("[" + filter + "]"))
	switch {
	case m.status.Loading:
		b.WriteString(" " + m.styles.Loading.Render("Loading…"))
	case m.status.Error != "":
		b.WriteString(" " + m.styles.Error.Render(m.status.Error))
	}
	b.WriteString("\n\n")

	if !m.ready {
		b.WriteString(m.styles.Dim.Render("Waiting for results"))
	} else {
		b.WriteString(renderItems(m.styles, m.view.Items))
	}

	b.WriteString(m.styles.Help.Render("tab: toggle in stock • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func renderItems(s styles, items []core.Item) string {
	if len(items) == 0 {
		return s.Dim.Render("No products found") + "\n"
	}

	var b strings.Builder
	b.WriteString(s.Header.Render(fmt.Sprintf("%-6s %-40s %10s %6s", "ID", "Title", "Price", "Stock")))
	b.WriteString("\n")
	for i, item := range items {
		if i == maxRows {
			b.WriteString(s.Dim.Render(fmt.Sprintf("… %d more", len(items)-maxRows)))
			b.WriteString("\n")
			break
		}
		row := fmt.Sprintf("%-6d %-40s %10.2f %6d", item.ID, truncate(item.Title, 40), item.Price, item.Stock)
		if !item.InStock() {
			row = s.Dim.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func tuiCommand(c *cli.Context) error {
	session, stop, err := openSession(appConfig(c))
	if err != nil {
		return err
	}
	defer stop()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	program := tea.NewProgram(newModel(ctx, session.Pipeline()), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
