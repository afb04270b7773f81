package core

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"videre/config"
	"videre/internal/transport"
	"videre/util"
)

// TestShellMode_Quit verifies the shell exits on ctrl+c and leaves the
// session closed.
func TestShellMode_Quit(t *testing.T) {
	cfg := config.Default()
	dialer := &transport.TCPDialer{}
	logger := util.NewLogger(0)

	mode := &ShellMode{
		Session: BuildSession(cfg, dialer, logger, nil),
		Dialer:  dialer,
		Port:    cfg.Port,
		Logger:  logger,
		Options: []tea.ProgramOption{
			tea.WithInput(strings.NewReader("\x03")),
			tea.WithOutput(io.Discard),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := mode.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mode.Session.IsConnected() {
		t.Error("session should not be connected")
	}
}

// loginDialer fails its up-front login.
type loginDialer struct {
	transport.TCPDialer
	err error
}

func (d *loginDialer) Login(context.Context) error { return d.err }

func (d *loginDialer) Dial(context.Context, string, string) (net.Conn, error) {
	return nil, d.err
}

func TestShellMode_LoginFailureSkipsShell(t *testing.T) {
	cfg := config.Default()
	boom := errors.New("jump host refused login")
	dialer := &loginDialer{err: boom}
	logger := util.NewLogger(0)

	mode := &ShellMode{
		Session: BuildSession(cfg, dialer, logger, nil),
		Dialer:  dialer,
		Logger:  logger,
		Options: []tea.ProgramOption{
			tea.WithInput(strings.NewReader("")),
			tea.WithOutput(io.Discard),
		},
	}

	if err := mode.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run err = %v, want %v", err, boom)
	}
}
