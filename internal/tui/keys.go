package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit   key.Binding
	Complete key.Binding
	Prev     key.Binding
	Next     key.Binding
	Reset    key.Binding
	Clear    key.Binding
	Cancel   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
		Prev:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "history")),
		Next:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↑/↓", "history")),
		Reset:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "reset")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Cancel:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup/pgdn", "scroll")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Complete, k.Prev, k.Clear, k.PageUp, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Complete, k.Prev, k.Reset},
		{k.Clear, k.Cancel, k.PageUp, k.Quit},
	}
}

// gameKeys is only used for the help line while Pong has the screen.
type gameKeys struct {
	Move    key.Binding
	Pause   key.Binding
	Restart key.Binding
	Exit    key.Binding
}

func defaultGameKeys() gameKeys {
	return gameKeys{
		Move:    key.NewBinding(key.WithKeys("w", "s", "up", "down"), key.WithHelp("w/s ↑/↓", "move")),
		Pause:   key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p/space", "pause")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Exit:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", "exit")),
	}
}

func (k gameKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Pause, k.Restart, k.Exit}
}

func (k gameKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
