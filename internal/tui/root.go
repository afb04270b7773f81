package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// NavigateTo asks the root to open the entry with the given title.
type NavigateTo struct {
	Title string
}

// RootModel is the TUI router:
// 1) shows the drawer or the active screen
// 2) handles the global quit and drawer keys
// 3) handles NavigateTo messages
// 4) delegates all other messages to the active screen
type RootModel struct {
	entries    []Entry
	idx        int
	drawerOpen bool
	current    tea.Model
}

// NewRootModel keeps the valid entries and opens on the drawer.
func NewRootModel(entries []Entry) RootModel {
	var valid []Entry
	for _, e := range entries {
		if e.Valid() {
			valid = append(valid, e)
		}
	}
	return RootModel{entries: valid, drawerOpen: true}
}

func (r RootModel) Init() tea.Cmd { return nil }

func (r RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.quit):
			return r, tea.Quit
		case key.Matches(k, keys.drawer):
			if r.current != nil {
				r.drawerOpen = !r.drawerOpen
			}
			return r, nil
		}
		if r.drawerOpen {
			return r.updateDrawer(k)
		}
	}

	if nav, ok := msg.(NavigateTo); ok {
		for i, e := range r.entries {
			if e.Title == nav.Title {
				return r.open(i)
			}
		}
		return r, nil
	}

	if r.current == nil {
		return r, nil
	}
	updated, cmd := r.current.Update(msg)
	r.current = updated
	return r, cmd
}

func (r RootModel) updateDrawer(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, keys.up):
		if r.idx > 0 {
			r.idx--
		}
	case key.Matches(k, keys.down):
		if r.idx < len(r.entries)-1 {
			r.idx++
		}
	case key.Matches(k, keys.enter):
		if len(r.entries) > 0 {
			return r.open(r.idx)
		}
	case key.Matches(k, keys.esc):
		if r.current != nil {
			r.drawerOpen = false
		}
	}
	return r, nil
}

// open replaces the current screen with a fresh instance of entry i.
func (r RootModel) open(i int) (tea.Model, tea.Cmd) {
	r.idx = i
	r.current = r.entries[i].New()
	r.drawerOpen = false
	return r, r.current.Init()
}

func (r RootModel) View() string {
	if r.drawerOpen || r.current == nil {
		return appStyle.Render(r.drawerView())
	}
	return appStyle.Render(r.current.View())
}

func (r RootModel) drawerView() string {
	var b strings.Builder
	for i, e := range r.entries {
		line := fmt.Sprintf("  %s", e.Title)
		if i == r.idx {
			line = selectedStyle.Render(fmt.Sprintf("> %s", e.Title))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	help := "↑/↓: select │ enter: open"
	if r.current != nil {
		help += " │ esc: back"
	}
	return renderPage("VIDERE", strings.TrimRight(b.String(), "\n"), help)
}
