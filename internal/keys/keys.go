package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Tabs
	SwitchTab key.Binding

	// Task actions
	New       key.Binding
	Done      key.Binding
	Delete    key.Binding
	RemindNow key.Binding

	// Reminder service
	ToggleService key.Binding
	CheckNow      key.Binding

	// Command palette
	Command key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		SwitchTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "pending/completed"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Done: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "mark done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
		RemindNow: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "remind now"),
		),
		ToggleService: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start/stop reminders"),
		),
		CheckNow: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "check now"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.New, k.Done, k.Delete, k.RemindNow,
		k.ToggleService, k.SwitchTab, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.SwitchTab, k.Back, k.Quit},
		{k.New, k.Done, k.Delete, k.RemindNow},
		{k.ToggleService, k.CheckNow, k.Command, k.Help},
	}
}
