package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"videre/internal/remote"
	"videre/internal/session"
)

// Entry is one item of the navigation drawer.  Selecting it replaces
// the current screen with a fresh one from New.
type Entry struct {
	Title string
	New   func() tea.Model
}

// Valid reports whether the entry can be shown.
func (e Entry) Valid() bool { return e.Title != "" && e.New != nil }

// Deps is what the built-in screens need.
type Deps struct {
	Ctx     context.Context
	Session *session.Session
	Remote  *remote.Remote

	// Host and Port prefill the connector.
	Host string
	Port int
}

// Entries returns the drawer entries: Connector then Remote.
func Entries(d Deps) []Entry {
	return []Entry{
		{Title: "Connector", New: func() tea.Model { return NewConnectorModel(d) }},
		{Title: "Remote", New: func() tea.Model { return NewRemoteModel(d) }},
	}
}
