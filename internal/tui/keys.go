package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	esc       key.Binding
	tab       key.Binding
	backtab   key.Binding
	quit      key.Binding
	logout    key.Binding
	newItem   key.Binding
	refresh   key.Binding
	fullFetch key.Binding
	more      key.Binding
	push      key.Binding
	search    key.Binding
	edit      key.Binding
	delete    key.Binding
	copy      key.Binding
	export    key.Binding
	conflict  key.Binding
	save      key.Binding
	keepLocal key.Binding
	useServer key.Binding
	yes       key.Binding
	no        key.Binding
}

var keys = keyMap{
	up:        key.NewBinding(key.WithKeys("up", "k")),
	down:      key.NewBinding(key.WithKeys("down", "j")),
	enter:     key.NewBinding(key.WithKeys("enter")),
	esc:       key.NewBinding(key.WithKeys("esc")),
	tab:       key.NewBinding(key.WithKeys("tab")),
	backtab:   key.NewBinding(key.WithKeys("shift+tab")),
	quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	logout:    key.NewBinding(key.WithKeys("L")),
	newItem:   key.NewBinding(key.WithKeys("n")),
	refresh:   key.NewBinding(key.WithKeys("s")),
	fullFetch: key.NewBinding(key.WithKeys("S")),
	more:      key.NewBinding(key.WithKeys("m")),
	push:      key.NewBinding(key.WithKeys("p")),
	search:    key.NewBinding(key.WithKeys("/")),
	edit:      key.NewBinding(key.WithKeys("e", "enter")),
	delete:    key.NewBinding(key.WithKeys("d")),
	copy:      key.NewBinding(key.WithKeys("c")),
	export:    key.NewBinding(key.WithKeys("E")),
	conflict:  key.NewBinding(key.WithKeys("x")),
	save:      key.NewBinding(key.WithKeys("ctrl+s")),
	keepLocal: key.NewBinding(key.WithKeys("l")),
	useServer: key.NewBinding(key.WithKeys("s")),
	yes:       key.NewBinding(key.WithKeys("y")),
	no:        key.NewBinding(key.WithKeys("n")),
}
