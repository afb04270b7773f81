package core

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"videre/internal/metrics"
	"videre/internal/remote"
	"videre/internal/session"
	"videre/internal/transport"
	"videre/internal/tui"
	"videre/util"
)

// ShellMode runs the interactive terminal shell.  Host and Port only
// prefill the connector; nothing is dialled until the user asks.
type ShellMode struct {
	Session *session.Session
	Dialer  transport.Dialer
	Host    string
	Port    int
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Options are passed to the bubbletea program, for tests.
	Options []tea.ProgramOption
}

// Run blocks until the user quits the shell or ctx is cancelled.
func (m *ShellMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()
	defer m.Session.Close()

	// Password and passphrase prompts cannot share the terminal with
	// the shell, so any jump-host login happens first.
	if l, ok := m.Dialer.(interface{ Login(context.Context) error }); ok {
		if err := l.Login(ctx); err != nil {
			return err
		}
	}

	m.Logger.Verbose("starting shell")
	return tui.Run(tui.Deps{
		Ctx:     ctx,
		Session: m.Session,
		Remote:  remote.New(m.Session, m.Metrics),
		Host:    m.Host,
		Port:    m.Port,
	}, m.Options...)
}
