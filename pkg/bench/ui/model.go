// Package ui is an interactive front end for the benchmark matrix: a
// spinner while the runs execute, then the results in a scrollable table.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tablestore/pkg/bench"
	"tablestore/pkg/metrics"
)

var (
	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B5CF6")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CBD5E1")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// resultsMsg delivers the finished matrix to the model.
type resultsMsg struct {
	results []bench.Result
	err     error
}

// Model drives the benchmark matrix from a terminal session.
type Model struct {
	cfg     bench.Config
	spinner spinner.Model
	table   table.Model

	running bool
	err     error
	done    bool
}

func NewModel(cfg bench.Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6"))

	return Model{
		cfg:     cfg,
		spinner: sp,
		running: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runMatrix())
}

// runMatrix executes the full matrix off the UI loop and reports back.
func (m Model) runMatrix() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		results, err := bench.RunMatrix(context.Background(), cfg)
		return resultsMsg{results: results, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case resultsMsg:
		m.running = false
		m.done = true
		m.err = msg.err
		if msg.err == nil {
			m.table = resultsTable(msg.results)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.done && m.err == nil {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	s := titleStyle.Render("tablestore benchmark") + "\n"

	switch {
	case m.running:
		s += fmt.Sprintf("%s running matrix: %d rows, %d scalar columns\n",
			m.spinner.View(), m.cfg.Rows, m.cfg.ScalarColumns)
	case m.err != nil:
		s += errorStyle.Render("matrix failed: "+m.err.Error()) + "\n"
	default:
		s += m.table.View() + "\n"
	}

	s += statusStyle.Render("q: quit")
	return s
}

func resultsTable(results []bench.Result) table.Model {
	columns := []table.Column{
		{Title: "Write", Width: 16},
		{Title: "Allocation", Width: 15},
		{Title: "Elapsed", Width: 10},
		{Title: "Writes", Width: 8},
		{Title: "Zero-fills", Width: 10},
		{Title: "Bytes out", Width: 12},
		{Title: "Check", Width: 8},
	}

	rows := make([]table.Row, len(results))
	for i, r := range results {
		check := "ok"
		if !r.Verified {
			check = "MISMATCH"
		}
		rows[i] = table.Row{
			r.Write.String(),
			r.Alloc.String(),
			r.Elapsed.String(),
			fmt.Sprintf("%.0f", r.IO.Calls[metrics.OpWrite]),
			fmt.Sprintf("%.0f", r.IO.Calls[metrics.OpZeroFill]),
			fmt.Sprintf("%.0f", r.IO.Bytes[metrics.OpWrite]),
			check,
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#8B5CF6")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("#8B5CF6"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#0F172A")).
		Background(lipgloss.Color("#38BDF8")).
		Bold(false)
	t.SetStyles(s)

	return t
}
