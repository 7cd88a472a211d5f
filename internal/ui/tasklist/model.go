package tasklist

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/theme"
)

// Tab selects which tasks the list shows.
type Tab int

const (
	TabPending Tab = iota
	TabCompleted
)

// Tabs are the tab labels in Tab order.
var Tabs = []string{"Pending", "Completed"}

// Model is the task list view component.
type Model struct {
	list   list.Model
	tab    Tab
	lead   time.Duration
	width  int
	height int
}

// New creates a task list. lead is the reminder window used to highlight
// tasks that are due soon.
func New(lead time.Duration, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")

	return Model{
		list:   l,
		lead:   lead,
		width:  width,
		height: height,
	}
}

// Tab returns the active tab.
func (m Model) Tab() Tab {
	return m.tab
}

// ToggleTab switches between pending and completed tasks.
func (m *Model) ToggleTab() {
	if m.tab == TabPending {
		m.tab = TabCompleted
	} else {
		m.tab = TabPending
	}
	m.list.ResetSelected()
}

// SetTasks replaces the displayed tasks, keeping the cursor on the same
// task when it is still present.
func (m *Model) SetTasks(tasks []model.Task, now time.Time) tea.Cmd {
	selected, _ := m.SelectedID()

	items := make([]list.Item, len(tasks))
	cursor := -1
	for i, t := range tasks {
		items[i] = TaskItem{Task: t, Now: now, Lead: m.lead}
		if t.ID == selected {
			cursor = i
		}
	}
	cmd := m.list.SetItems(items)
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// SelectedID returns the ID of the highlighted task.
func (m Model) SelectedID() (string, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return "", false
	}
	return item.Task.ID, true
}

// Update forwards navigation keys to the list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when the tab has no tasks.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.tab == TabCompleted {
		return style.Render("No completed tasks yet.")
	}
	return style.Render("No pending tasks.\n\nPress n to add one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
