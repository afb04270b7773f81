package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"videre/internal/capability"
	"videre/internal/metrics"
	"videre/internal/remote"
	"videre/internal/session"
	"videre/internal/transport"
	"videre/util"
)

// ConnectMode signs in to the player and runs a capability on the
// session, the default client mode.
type ConnectMode struct {
	Session    *session.Session
	Dialer     transport.Dialer
	Capability capability.Capability
	Host       string
	Port       int
	Logger     *util.Logger
	Metrics    *metrics.Collector

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (m *ConnectMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run signs in, waits for the result, and hands the session to the
// capability.  The session and transport are closed when Run returns.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()
	defer m.Session.Close()

	m.Logger.Verbose("connecting to %s", util.FormatAddr(m.Host, m.Port))

	results, err := m.Session.Connect(ctx, m.Host, m.Port)
	if err != nil {
		return err
	}
	res := <-results
	if res.Err != nil {
		return fmt.Errorf("connect to %s: %w", res.Addr, res.Err)
	}

	m.Logger.Verbose("connected to %s", m.Session.RemoteAddr())

	env := &capability.Env{
		Session: m.Session,
		Remote:  remote.New(m.Session, m.Metrics),
		Stdin:   m.stdin(),
		Stdout:  m.stdout(),
		Logger:  m.Logger,
	}
	return m.Capability.Handle(ctx, env)
}
