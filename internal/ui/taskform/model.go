package taskform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/registry"
	"github.com/nhle/task-reminder/internal/theme"
)

// SubmittedMsg is dispatched when the user completes the form.
type SubmittedMsg struct {
	Task registry.NewTask
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	due         string
	priority    model.Priority
	category    string
	remind      string
}

// Model is the Bubble Tea model for the new task form.
type Model struct {
	form          *huh.Form
	fb            *formBindings
	defaultOffset int
	now           func() time.Time
	width         int
	height        int
}

// New creates a task form. defaultOffset pre-fills the manual reminder
// minutes.
func New(width, height, defaultOffset int) Model {
	return Model{
		fb:            &formBindings{},
		defaultOffset: defaultOffset,
		now:           time.Now,
		width:         width,
		height:        height,
	}
}

// Start resets the fields and builds a fresh form.
func (m *Model) Start() tea.Cmd {
	m.fb.title = ""
	m.fb.description = ""
	m.fb.due = "60"
	m.fb.priority = model.PriorityMedium
	m.fb.category = model.DefaultCategory
	m.fb.remind = strconv.Itoa(m.defaultOffset)
	m.form = m.buildForm()
	return m.form.Init()
}

// Active reports whether a form is being edited.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		submit := m.handleSubmit()
		m.form = nil
		return m, submit
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Task") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	priorities := make([]huh.Option[model.Priority], len(model.Priorities))
	for i, p := range model.Priorities {
		priorities[i] = huh.NewOption(string(p), p)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Due").
				Description("Minutes from now, +1h30m, HH:MM or YYYY-MM-DD HH:MM").
				Value(&m.fb.due).
				Validate(m.validateDue),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(priorities...).
				Value(&m.fb.priority),
			huh.NewInput().
				Title("Category").
				Value(&m.fb.category),
			huh.NewInput().
				Title("Manual reminder").
				Description("Minutes before due, 0 for none").
				Value(&m.fb.remind).
				Validate(validateMinutes),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	due, _ := model.ParseDue(m.fb.due, m.now())
	offset, _ := strconv.Atoi(strings.TrimSpace(m.fb.remind))

	task := registry.NewTask{
		Title:               strings.TrimSpace(m.fb.title),
		Description:         strings.TrimSpace(m.fb.description),
		DueAt:               due,
		Priority:            m.fb.priority,
		Category:            strings.TrimSpace(m.fb.category),
		ManualOffsetMinutes: offset,
	}
	return func() tea.Msg { return SubmittedMsg{Task: task} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func (m Model) validateDue(s string) error {
	now := m.now()
	due, err := model.ParseDue(s, now)
	if err != nil {
		return err
	}
	if !due.After(now) {
		return fmt.Errorf("due time must be in the future")
	}
	return nil
}

func validateMinutes(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of minutes, 0 or more")
	}
	return nil
}
