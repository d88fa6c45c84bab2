package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// RunKeyMap defines the run monitor shortcuts
type RunKeyMap struct {
	Stop     key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Follow   key.Binding
}

// DefaultKeyMap returns the default key mappings
func DefaultKeyMap() RunKeyMap {
	return RunKeyMap{
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop run"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "stop and quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f", " "),
			key.WithHelp("pgdn", "page down"),
		),
		Follow: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "follow log"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer
func (k RunKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Stop, k.Quit, k.Up, k.Down, k.Follow}
}

// FullHelp lists every binding
func (k RunKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Stop, k.Quit},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Follow},
	}
}
