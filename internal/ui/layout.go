package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-reminder/internal/theme"
)

// minListWidth is the narrowest the task list may get before the
// reminders panel is hidden.
const minListWidth = 50

// Layout manages the terminal layout dimensions: a header, a tab row, the
// task list with an optional reminders panel beside it, and a status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	TabsHeight      int
	StatusBarHeight int
	PanelWidth      int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		TabsHeight:      1,
		StatusBarHeight: 1,
		PanelWidth:      38,
	}
}

// ShowPanel reports whether the reminders panel fits next to the list.
func (l Layout) ShowPanel() bool {
	return l.Width-l.PanelWidth >= minListWidth
}

// ListWidth returns the width left for the task list.
func (l Layout) ListWidth() int {
	if l.ShowPanel() {
		return l.Width - l.PanelWidth
	}
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header, tabs and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.TabsHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top header bar with a title on the left and
// the reminder service status on the right.
func (l Layout) RenderHeader(title string, serviceStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(serviceStatus)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		l.filler(theme.HeaderStyle, l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(statusRendered)),
		statusRendered,
	)
}

// RenderTabs renders the tab row with active highlighted.
func (l Layout) RenderTabs(tabs []string, active int) string {
	rendered := make([]string, len(tabs))
	for i, tab := range tabs {
		if i == active {
			rendered[i] = theme.ActiveTabStyle.Render(tab)
		} else {
			rendered[i] = theme.TabStyle.Render(tab)
		}
	}
	return strings.Join(rendered, " ")
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		rendered,
		l.filler(theme.StatusBarStyle, l.Width-lipgloss.Width(rendered)))
}

// RenderBody places the list and, when it fits, the panel side by side.
func (l Layout) RenderBody(list, panel string) string {
	if !l.ShowPanel() || panel == "" {
		return list
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(l.ListWidth()).Render(list),
		panel)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, tabs, body and status bar.
func (l Layout) RenderWithFrame(header, tabs, body, statusBar string) string {
	body = lipgloss.NewStyle().Height(l.ContentHeight()).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, body, statusBar)
}

func (l Layout) filler(style lipgloss.Style, gap int) string {
	if gap < 0 {
		gap = 0
	}
	return lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
}
