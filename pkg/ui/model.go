// Package ui renders the dashboard in the terminal. It is a peripheral
// consumer of the core: it reads store snapshots on a tick and receives
// connection-status transitions as messages. No routing or connection
// logic lives here.
package ui

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/randalmurphal/orcdash/pkg/dispatch"
	"github.com/randalmurphal/orcdash/pkg/events"
	"github.com/randalmurphal/orcdash/pkg/store"
	"github.com/randalmurphal/orcdash/pkg/stream"
)

const tickInterval = 250 * time.Millisecond

// StatusMsg carries a connection-status transition into the program.
// The caller wires client.OnStatusChange to program.Send.
type StatusMsg struct {
	Status stream.Status
}

// tickMsg drives store re-reads and the elapsed clock.
type tickMsg time.Time

// Model is the bubbletea model for the dashboard.
type Model struct {
	stores  dispatch.Stores
	status  stream.Status
	table   table.Model
	spinner spinner.Model
	width   int
	noColor bool
}

// Options configures the dashboard model.
type Options struct {
	NoColor bool
}

// NewModel builds the dashboard over the given stores.
func NewModel(stores dispatch.Stores, opts Options) Model {
	t := table.New(
		table.WithColumns(taskColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		stores:  stores,
		status:  stream.StatusDisconnected,
		table:   t,
		spinner: sp,
		width:   80,
		noColor: opts.NoColor,
	}
}

// Init starts the tick loop and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.spinner.Tick)
}

// Update handles ticks, status transitions, resizes, and keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetColumns(taskColumns(msg.Width))
		m.table.SetHeight(max(msg.Height-7, 3))
		return m, nil

	case StatusMsg:
		m.status = msg.Status
		return m, nil

	case tickMsg:
		m.table.SetRows(m.taskRows())
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders header, task table, and notification footer.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.table.View(),
		m.renderFooter(),
	)
}

// taskRows snapshots the task store into table rows, sorted by id so
// rows do not jump between ticks.
func (m Model) taskRows() []table.Row {
	tasks := m.stores.Tasks.All()
	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		t := tasks[id]
		tokens := ""
		if t.Execution != nil {
			tokens = formatTokens(t.Execution.Tokens.EffectiveTotalTokens())
		}
		rows = append(rows, table.Row{
			t.ID,
			truncate(t.Title, 40),
			string(t.Status),
			t.CurrentPhase,
			string(currentActivity(t)),
			tokens,
		})
	}
	return rows
}

// currentActivity returns the activity state for the task's current
// phase, empty when none was reported yet.
func currentActivity(t store.Task) events.ActivityState {
	if t.Activity == nil {
		return ""
	}
	return t.Activity[t.CurrentPhase]
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
