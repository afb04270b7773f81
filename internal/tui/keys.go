package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	esc        key.Binding
	tab        key.Binding
	backtab    key.Binding
	quit       key.Binding
	drawer     key.Binding
	play       key.Binding
	pause      key.Binding
	toggle     key.Binding
	disconnect key.Binding
}

var keys = keyMap{
	up:         key.NewBinding(key.WithKeys("up", "k")),
	down:       key.NewBinding(key.WithKeys("down", "j")),
	enter:      key.NewBinding(key.WithKeys("enter")),
	esc:        key.NewBinding(key.WithKeys("esc")),
	tab:        key.NewBinding(key.WithKeys("tab")),
	backtab:    key.NewBinding(key.WithKeys("shift+tab")),
	quit:       key.NewBinding(key.WithKeys("ctrl+c")),
	drawer:     key.NewBinding(key.WithKeys("ctrl+o")),
	play:       key.NewBinding(key.WithKeys("p")),
	pause:      key.NewBinding(key.WithKeys("s")),
	toggle:     key.NewBinding(key.WithKeys(" ")),
	disconnect: key.NewBinding(key.WithKeys("ctrl+d")),
}
