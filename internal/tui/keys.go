package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Dec      key.Binding
	Inc      key.Binding
	Toggle   key.Binding
	Edit     key.Binding
	Cancel   key.Binding
	Default  key.Binding
	Accept   key.Binding
	Reject   key.Binding
	Snapshot key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Dec:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
		Inc:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Edit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit/export")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Default:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "default")),
		Accept:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Reject:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reject")),
		Snapshot: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snapshot")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help(acceptReject bool) []key.Binding {
	out := []key.Binding{k.Up, k.Down, k.Dec, k.Inc, k.Edit, k.Default}
	if acceptReject {
		out = append(out, k.Accept, k.Reject, k.Cancel)
	}
	return append(out, k.Snapshot, k.Quit)
}
