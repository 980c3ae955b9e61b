package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/randalmurphal/orcdash/pkg/store"
	"github.com/randalmurphal/orcdash/pkg/stream"
)

var (
	headerStyle       = lipgloss.NewStyle().Bold(true)
	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	reconnectingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// renderHeader shows connection status, session clock and token totals.
func (m Model) renderHeader() string {
	var status string
	switch m.status {
	case stream.StatusConnected:
		status = m.style(connectedStyle, "● connected")
	case stream.StatusConnecting:
		status = m.spinner.View() + "connecting"
	case stream.StatusReconnecting:
		status = m.spinner.View() + m.style(reconnectingStyle, "reconnecting")
	default:
		status = m.style(disconnectedStyle, "○ disconnected")
	}

	metrics := m.stores.Session.Metrics()
	elapsed := m.stores.Session.Elapsed().Round(time.Second)
	session := fmt.Sprintf("%s · %s tokens · $%.2f · %d running",
		elapsed, formatTokens(metrics.TotalTokens),
		metrics.EstimatedCostUSD, metrics.TasksRunning)
	if metrics.IsPaused {
		session += " · paused"
	}

	left := m.style(headerStyle, "orcdash")
	return left + "  " + status + "  " + m.style(dimStyle, session)
}

// renderFooter shows pending decisions and the most recent toasts.
func (m Model) renderFooter() string {
	var lines []string

	for _, d := range m.stores.Notifications.PendingDecisions() {
		lines = append(lines, m.style(warnStyle,
			fmt.Sprintf("⧗ decision needed [%s/%s]: %s", d.TaskID, d.Phase, d.Question)))
	}

	toasts := m.stores.Notifications.Toasts()
	const showLast = 3
	start := len(toasts) - showLast
	if start < 0 {
		start = 0
	}
	for _, t := range toasts[start:] {
		line := fmt.Sprintf("%s %s", t.At.Format("15:04:05"), t.Message)
		switch t.Level {
		case store.ToastError:
			line = m.style(errStyle, line)
		case store.ToastWarning:
			line = m.style(warnStyle, line)
		default:
			line = m.style(dimStyle, line)
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		lines = append(lines, m.style(dimStyle, "q to quit"))
	}
	return strings.Join(lines, "\n")
}

// style applies s unless colors are disabled.
func (m Model) style(s lipgloss.Style, text string) string {
	if m.noColor {
		return text
	}
	return s.Render(text)
}

func taskColumns(width int) []table.Column {
	title := width - 64
	if title < 20 {
		title = 20
	}
	return []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Title", Width: title},
		{Title: "Status", Width: 11},
		{Title: "Phase", Width: 10},
		{Title: "Activity", Width: 12},
		{Title: "Tokens", Width: 8},
	}
}

func formatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
