// Package tui is the interactive shell: a drawer of screens for
// connecting to the player and driving playback.
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the shell until the user quits or d.Ctx is cancelled.
func Run(d Deps, opts ...tea.ProgramOption) error {
	root := NewRootModel(Entries(d))
	if d.Ctx != nil {
		opts = append(opts, tea.WithContext(d.Ctx))
	}
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)

	_, err := tea.NewProgram(root, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && d.Ctx != nil && d.Ctx.Err() != nil {
		return nil
	}
	return err
}
