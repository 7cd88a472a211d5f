package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task

	// Now is the render time used for countdowns.
	Now time.Time

	// Lead is the reminder window; countdowns inside it are highlighted.
	Lead time.Duration
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title + " " + i.Task.Category }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		string(i.Task.Priority),
		i.Task.Category,
		model.FormatCountdown(i.Task.DueAt, i.Now),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(ti, index == m.Index()))
}

func renderLine(ti TaskItem, isSelected bool) string {
	t := ti.Task

	prefix := "○"
	if t.IsCompleted() {
		prefix = "✓"
	}

	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))
	category := lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render("[" + t.Category + "]")

	line := fmt.Sprintf("%s %s %s %s  %s%s",
		prefix, priBadge, t.Title, category, dueLabel(ti), reminderLabel(t))

	if t.IsCompleted() {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// dueLabel renders the countdown for pending tasks and the completion
// time for completed ones.
func dueLabel(ti TaskItem) string {
	t := ti.Task
	if t.IsCompleted() {
		if t.CompletedAt == nil {
			return ""
		}
		return theme.DueStyle.Render("done " + t.CompletedAt.Local().Format("Jan 02 15:04"))
	}

	countdown := model.FormatCountdown(t.DueAt, ti.Now)
	switch left := t.TimeUntilDue(ti.Now); {
	case left < 0:
		return theme.OverdueStyle.Render(countdown)
	case left <= ti.Lead:
		return theme.DueSoonStyle.Render(countdown)
	default:
		return theme.DueStyle.Render(countdown + " (" + t.DueAt.Local().Format("Jan 02 15:04") + ")")
	}
}

// reminderLabel summarises reminder bookkeeping: the automatic count and
// the manual reminder state.
func reminderLabel(t model.Task) string {
	var parts []string
	if t.RemindersSent > 0 {
		parts = append(parts, fmt.Sprintf("auto×%d", t.RemindersSent))
	}
	if t.ManualReminderAt != nil || t.ManualReminderSent {
		switch {
		case t.ManualReminderSent:
			parts = append(parts, "manual sent")
		default:
			parts = append(parts, "manual "+t.ManualReminderAt.Local().Format("15:04"))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render("  🔔 " + strings.Join(parts, ", "))
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityUrgent:
		return "URG"
	case model.PriorityHigh:
		return "HI "
	case model.PriorityMedium:
		return "MED"
	case model.PriorityLow:
		return "LOW"
	default:
		return "?  "
	}
}
