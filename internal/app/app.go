package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/task-reminder/internal/keys"
	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/registry"
	"github.com/nhle/task-reminder/internal/reminder"
	"github.com/nhle/task-reminder/internal/store"
	"github.com/nhle/task-reminder/internal/theme"
	"github.com/nhle/task-reminder/internal/ui"
	"github.com/nhle/task-reminder/internal/ui/command"
	helpview "github.com/nhle/task-reminder/internal/ui/help"
	"github.com/nhle/task-reminder/internal/ui/reminders"
	"github.com/nhle/task-reminder/internal/ui/taskform"
	"github.com/nhle/task-reminder/internal/ui/tasklist"
)

// refreshInterval is how often the list countdowns and service status
// are redrawn.
const refreshInterval = time.Second

// tickMsg triggers a refresh from the registry.
type tickMsg time.Time

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewForm
	ViewHelp
	ViewCommand
)

// Deps are the services the UI drives.
type Deps struct {
	Registry *registry.Registry
	Worker   *reminder.Worker
	History  *reminder.History

	// Log is optional; when set the header shows the unread count.
	Log store.NotificationLog

	// Lead is the due-soon window used for highlighting and the header
	// count. Zero means reminder.DefaultLead.
	Lead time.Duration

	// ManualOffset pre-fills the form's reminder minutes.
	ManualOffset int

	// AutoStart starts the reminder service when the UI opens.
	AutoStart bool
}

// Model is the root Bubble Tea model that manages view routing, layout
// and the reminder service.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	taskList    tasklist.Model
	taskForm    taskform.Model
	panel       reminders.Model
	helpView    helpview.Model
	commandView command.Model

	registry  *registry.Registry
	worker    *reminder.Worker
	notifLog  store.NotificationLog
	policy    reminder.Policy
	autoStart bool
	now       func() time.Time

	ready       bool
	counts      taskCounts
	unreadCount int
	flash       string
	flashErr    bool
}

// New creates the root model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	history := d.History
	if history == nil {
		history = reminder.NewHistory(0)
	}
	lead := d.Lead
	if lead <= 0 {
		lead = reminder.DefaultLead
	}

	return Model{
		currentView: ViewList,
		keys:        k,
		taskList:    tasklist.New(lead, 80, 24),
		taskForm:    taskform.New(80, 24, d.ManualOffset),
		panel:       reminders.New(history, 38, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		registry:    d.Registry,
		worker:      d.Worker,
		notifLog:    d.Log,
		policy:      reminder.Policy{Lead: lead},
		autoStart:   d.AutoStart,
		now:         time.Now,
	}
}

// Init starts the reminder service when configured and schedules the
// first refresh.
func (m Model) Init() tea.Cmd {
	if m.autoStart {
		m.worker.Start()
	}
	return tea.Batch(
		func() tea.Msg { return tickMsg(m.now()) },
		m.fetchUnreadCount(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentHeight := m.layout.ContentHeight()
		m.taskList.SetSize(m.layout.ListWidth(), contentHeight)
		m.panel.SetSize(m.layout.PanelWidth, contentHeight)
		m.taskForm.SetSize(msg.Width, contentHeight)
		m.helpView.SetSize(msg.Width, contentHeight)
		m.commandView.SetSize(msg.Width, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tickMsg:
		cmd := m.reload()
		return m, tea.Batch(cmd, tick())

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case actionResultMsg:
		m.flash, m.flashErr = msg.text, msg.failed
		return m, tea.Batch(m.reload(), m.fetchUnreadCount())

	case taskform.SubmittedMsg:
		m.currentView = ViewList
		return m, m.createTask(msg.Task)

	case taskform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg.Name)

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that are not forwarded to a sub-view.
// Forms and the command palette own the keyboard while open.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.worker.Stop()
		return tea.Quit, true
	}

	switch m.currentView {
	case ViewForm:
		return nil, false
	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return nil, true
		}
		return nil, false
	case ViewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.currentView = m.previousView
			return nil, true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.worker.Stop()
		return tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Open(), true

	case key.Matches(msg, m.keys.SwitchTab):
		m.taskList.ToggleTab()
		return m.reload(), true

	case key.Matches(msg, m.keys.New):
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m.taskForm.Start(), true

	case key.Matches(msg, m.keys.Done):
		if id, ok := m.taskList.SelectedID(); ok {
			return m.completeTask(id), true
		}
		return nil, true

	case key.Matches(msg, m.keys.Delete):
		if id, ok := m.taskList.SelectedID(); ok {
			return m.deleteTask(id), true
		}
		return nil, true

	case key.Matches(msg, m.keys.RemindNow):
		if id, ok := m.taskList.SelectedID(); ok {
			return m.remindNow(id), true
		}
		return nil, true

	case key.Matches(msg, m.keys.ToggleService):
		return m.toggleService(), true

	case key.Matches(msg, m.keys.CheckNow):
		return m.checkNow(), true
	}

	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "Task Reminder"
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("Task Reminder [%d unread]", m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.counts.String()+"  "+m.serviceStatus())
	tabs := m.layout.RenderTabs(tasklist.Tabs, int(m.taskList.Tab()))
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, tabs, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewForm:
		return m.taskForm.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return m.layout.RenderBody(m.taskList.View(), m.panel.View())
	}
}

// serviceStatus describes the reminder service for the header.
func (m Model) serviceStatus() string {
	if !m.worker.Running() {
		return "reminders: stopped"
	}
	next := m.worker.NextPoll()
	if next.IsZero() {
		return "reminders: running"
	}
	return fmt.Sprintf("reminders: running · next check %s", next.Format("15:04:05"))
}

// keyHints returns keyboard shortcut hints for the status bar. A pending
// flash message takes their place in the list view.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewForm:
		return "enter next | esc cancel"
	}

	if m.flash != "" {
		if m.flashErr {
			return theme.ErrorStyle.Render(m.flash)
		}
		return theme.SuccessStyle.Render(m.flash)
	}
	return "q quit | ? help | n new | d done | x delete | r remind | s service | c check | tab switch"
}

// taskCounts are the header statistics.
type taskCounts struct {
	pending, completed, dueSoon int
}

func (c taskCounts) String() string {
	return fmt.Sprintf("%d pending · %d completed · %d due soon", c.pending, c.completed, c.dueSoon)
}

// reload pulls the active tab's tasks from the registry and refreshes
// the header counts. Pending tasks are shown earliest due first.
func (m *Model) reload() tea.Cmd {
	now := m.now()
	pending := m.registry.ListPending()
	completed := m.registry.ListCompleted()
	model.SortByDue(pending)

	m.counts = taskCounts{
		pending:   len(pending),
		completed: len(completed),
		dueSoon:   m.policy.CountDueSoon(pending, now),
	}

	if m.taskList.Tab() == tasklist.TabCompleted {
		return m.taskList.SetTasks(completed, now)
	}
	return m.taskList.SetTasks(pending, now)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// executeCommand runs a command resolved by the command palette.
func (m *Model) executeCommand(name command.Name) tea.Cmd {
	switch name {
	case command.Check:
		return m.checkNow()
	case command.Start:
		if !m.worker.Running() {
			return m.toggleService()
		}
		return nil
	case command.Stop:
		if m.worker.Running() {
			return m.toggleService()
		}
		return nil
	case command.Pending:
		if m.taskList.Tab() != tasklist.TabPending {
			m.taskList.ToggleTab()
		}
		return m.reload()
	case command.Completed:
		if m.taskList.Tab() != tasklist.TabCompleted {
			m.taskList.ToggleTab()
		}
		return m.reload()
	case command.Quit:
		m.worker.Stop()
		return tea.Quit
	}
	return nil
}
