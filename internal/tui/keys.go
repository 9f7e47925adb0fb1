package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause key.Binding
	Back  key.Binding
	Fwd   key.Binding
	Reset key.Binding
	Inc   key.Binding
	Dec   key.Binding
	Edit  key.Binding
	Up    key.Binding
	Down  key.Binding
	Pane  key.Binding
	Quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Pause: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		Back:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "scrub back")),
		Fwd:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "scrub fwd")),
		Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Inc:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "var up")),
		Dec:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "var down")),
		Edit:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "user edit")),
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Pane:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "pane")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Back, k.Fwd, k.Reset, k.Inc, k.Dec, k.Edit, k.Pane, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Up, k.Down}}
}
