package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-reminder/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Check     Name = "check"
	Start     Name = "start"
	Stop      Name = "stop"
	Pending   Name = "pending"
	Completed Name = "completed"
	Quit      Name = "quit"
)

// Command describes one entry of the palette.
type Command struct {
	Name    Name
	Aliases []string
	Summary string
}

// Commands is the palette's command set, in display order.
var Commands = []Command{
	{Name: Check, Aliases: []string{"poll"}, Summary: "run one reminder check now"},
	{Name: Start, Summary: "start the reminder service"},
	{Name: Stop, Summary: "stop the reminder service"},
	{Name: Pending, Summary: "show pending tasks"},
	{Name: Completed, Aliases: []string{"done"}, Summary: "show completed tasks"},
	{Name: Quit, Aliases: []string{"q"}, Summary: "stop reminders and exit"},
}

// CommandMsg is emitted when the user runs a command.
type CommandMsg struct {
	Name Name
}

// Resolve maps input to a command. An exact name or alias wins;
// otherwise input must be the prefix of exactly one command name.
func Resolve(input string) (Name, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", errors.New("type a command")
	}

	for _, c := range Commands {
		if string(c.Name) == input {
			return c.Name, nil
		}
		for _, a := range c.Aliases {
			if a == input {
				return c.Name, nil
			}
		}
	}

	matches := Matching(input)
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown command %q", input)
	case 1:
		return matches[0].Name, nil
	default:
		names := make([]string, len(matches))
		for i, c := range matches {
			names[i] = string(c.Name)
		}
		return "", fmt.Errorf("%q could be %s", input, strings.Join(names, " or "))
	}
}

// Matching returns the commands whose name starts with prefix.
func Matching(prefix string) []Command {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []Command
	for _, c := range Commands {
		if strings.HasPrefix(string(c.Name), prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Model is the command palette opened with :.
type Model struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "check, start, stop, pending, completed, quit"
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Open clears the previous input and error and focuses the prompt.
func (m *Model) Open() tea.Cmd {
	m.input.Reset()
	m.err = ""
	return m.input.Focus()
}

// Err returns the message shown for the last rejected input.
func (m Model) Err() string {
	return m.err
}

// Update runs the command on enter and completes a unique prefix on tab.
// Rejected input stays in the prompt with the reason shown below it.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			name, err := Resolve(m.input.Value())
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.input.Reset()
			m.err = ""
			return m, func() tea.Msg { return CommandMsg{Name: name} }

		case "tab":
			if matches := Matching(m.input.Value()); len(matches) == 1 {
				m.input.SetValue(string(matches[0].Name))
				m.input.CursorEnd()
			}
			return m, nil
		}
		m.err = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt, the commands matching the current input and
// the last error.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Command Palette"), m.input.View(), ""}

	for _, c := range Matching(m.input.Value()) {
		name := string(c.Name)
		if len(c.Aliases) > 0 {
			name += " (" + strings.Join(c.Aliases, ", ") + ")"
		}
		lines = append(lines, fmt.Sprintf("%-18s %s", name, theme.HelpStyle.Render(c.Summary)))
	}

	if m.err != "" {
		lines = append(lines, "", theme.ErrorStyle.Render(m.err))
	}
	lines = append(lines, "", theme.HelpStyle.Render("enter run | tab complete | esc cancel"))

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}
