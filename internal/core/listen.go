package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"videre/internal/receiver"
	"videre/internal/remote"
)

// ListenMode stands in for the player: it accepts remotes and prints
// each playback command it receives, one per line.
type ListenMode struct {
	Receiver *receiver.Receiver

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

func (m *ListenMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run serves remotes until ctx is cancelled.
func (m *ListenMode) Run(ctx context.Context) error {
	out := m.stdout()
	show := func(cmd remote.Command) { fmt.Fprintln(out, cmd) }
	for _, cmd := range []remote.Command{remote.Play, remote.Pause, remote.PauseOrResume} {
		m.Receiver.Handle(cmd, show)
	}
	return m.Receiver.Serve(ctx)
}
