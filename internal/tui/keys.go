package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings active while browsing.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Expand     key.Binding
	Collapse   key.Binding
	Toggle     key.Binding
	NextParser key.Binding
	PrevParser key.Binding
	Settings   key.Binding
	Open       key.Binding
	Command    key.Binding
	Close      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Expand:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "expand")),
		Collapse:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "collapse")),
		Toggle:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle/open")),
		NextParser: key.NewBinding(key.WithKeys("tab", "p"), key.WithHelp("tab", "next parser")),
		PrevParser: key.NewBinding(key.WithKeys("shift+tab", "P"), key.WithHelp("shift+tab", "prev parser")),
		Settings:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Open:       key.NewBinding(key.WithKeys("o", "ctrl+o"), key.WithHelp("o", "open")),
		Command:    key.NewBinding(key.WithKeys("/", ":"), key.WithHelp("/", "command")),
		Close:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll down")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Toggle, k.NextParser, k.Settings, k.Command, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Expand, k.Collapse, k.Toggle},
		{k.NextParser, k.PrevParser, k.Settings},
		{k.Open, k.Close, k.Command, k.PageUp, k.PageDown, k.Quit},
	}
}
