// Package reminders renders the recent reminder events beside the task
// list.
package reminders

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-reminder/internal/reminder"
	"github.com/nhle/task-reminder/internal/theme"
)

// Model is the recent reminders panel.
type Model struct {
	history *reminder.History
	width   int
	height  int
}

// New creates a panel showing events from h.
func New(h *reminder.History, width, height int) Model {
	return Model{history: h, width: width, height: height}
}

// View renders the newest events first, as many as fit.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent Reminders"))
	b.WriteString("\n")

	// Each event takes two lines; the border and title take four.
	limit := (m.height - 4) / 2
	events := m.history.Recent(max(limit, 0))
	if len(events) == 0 {
		b.WriteString(theme.DimmedStyle.Render("No reminders yet."))
	}
	for _, e := range events {
		b.WriteString(renderEvent(e, m.width-4))
	}

	return theme.PanelStyle.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(b.String())
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func renderEvent(e reminder.Event, width int) string {
	badge := theme.KindStyle(e.Kind).Render(strings.ToUpper(string(e.Kind)))
	at := theme.DimmedStyle.Render(e.At.Format("15:04:05"))
	title := truncate(e.TaskTitle, width-lipgloss.Width(badge)-lipgloss.Width(at)-2)
	due := theme.DimmedStyle.Render(fmt.Sprintf("  due %s", e.DueAt.Format("Jan 2 15:04")))
	return fmt.Sprintf("%s %s %s\n%s\n", at, badge, title, due)
}

func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
