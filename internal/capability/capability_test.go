package capability

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verr "videre/internal/errors"
	"videre/internal/receiver"
	"videre/internal/remote"
	"videre/internal/session"
	"videre/util"
)

// player starts a receiver that records every byte it is sent.
func player(t *testing.T) (*receiver.Receiver, <-chan remote.Command) {
	t.Helper()
	got := make(chan remote.Command, 64)
	r := receiver.New("127.0.0.1:0", nil, nil)
	r.Fallback = func(cmd remote.Command) { got <- cmd }
	require.NoError(t, r.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Serve(ctx) //nolint:errcheck
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r, got
}

func connectedEnv(t *testing.T, r *receiver.Receiver, stdin string) *Env {
	t.Helper()
	s := session.New(session.Options{})
	t.Cleanup(func() { s.Close() })

	host, port := splitAddr(t, r)
	ch, err := s.Connect(context.Background(), host, port)
	require.NoError(t, err)
	require.NoError(t, (<-ch).Err)

	return &Env{
		Session: s,
		Remote:  remote.New(s, nil),
		Stdin:   strings.NewReader(stdin),
		Stdout:  &bytes.Buffer{},
		Logger:  util.Nop(),
	}
}

func splitAddr(t *testing.T, r *receiver.Receiver) (string, int) {
	t.Helper()
	a, ok := r.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return a.IP.String(), a.Port
}

func drain(t *testing.T, ch <-chan remote.Command, n int) []remote.Command {
	t.Helper()
	var out []remote.Command
	deadline := time.After(3 * time.Second)
	for len(out) < n {
		select {
		case c := <-ch:
			out = append(out, c)
		case <-deadline:
			t.Fatalf("received %d of %d commands", len(out), n)
		}
	}
	return out
}

func TestCommands_Args(t *testing.T) {
	r, got := player(t)
	env := connectedEnv(t, r, "")

	c := &Commands{Args: []string{"play", "toggle", "pause"}}
	require.NoError(t, c.Handle(context.Background(), env))

	assert.Equal(t,
		[]remote.Command{remote.Play, remote.PauseOrResume, remote.Pause},
		drain(t, got, 3))
}

func TestCommands_BadArg(t *testing.T) {
	r, _ := player(t)
	env := connectedEnv(t, r, "")

	c := &Commands{Args: []string{"rewind"}}
	assert.Error(t, c.Handle(context.Background(), env))
}

func TestCommands_Stdin(t *testing.T) {
	r, got := player(t)
	env := connectedEnv(t, r, "play\n\n# comment\nbogus\npause\n")

	c := &Commands{}
	require.NoError(t, c.Handle(context.Background(), env))

	assert.Equal(t, []remote.Command{remote.Play, remote.Pause}, drain(t, got, 2))
}

func TestCommands_Disconnected(t *testing.T) {
	s := session.New(session.Options{})
	env := &Env{
		Session: s,
		Remote:  remote.New(s, nil),
		Stdin:   strings.NewReader(""),
		Logger:  util.Nop(),
	}

	err := (&Commands{Args: []string{"play"}}).Handle(context.Background(), env)
	assert.ErrorIs(t, err, verr.ErrNotConnected)
}

func TestCommands_Cancelled(t *testing.T) {
	r, _ := player(t)
	env := connectedEnv(t, r, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&Commands{Args: []string{"play"}}).Handle(ctx, env)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipe_ForwardsBytes(t *testing.T) {
	r, got := player(t)
	env := connectedEnv(t, r, string([]byte{0, 2, 1, 2}))

	require.NoError(t, (&Pipe{}).Handle(context.Background(), env))

	assert.Equal(t,
		[]remote.Command{remote.Play, remote.PauseOrResume, remote.Pause, remote.PauseOrResume},
		drain(t, got, 4))
}

func TestPipe_Disconnected(t *testing.T) {
	s := session.New(session.Options{})
	env := &Env{
		Session: s,
		Stdin:   strings.NewReader("x"),
		Logger:  util.Nop(),
	}
	assert.ErrorIs(t, (&Pipe{}).Handle(context.Background(), env), verr.ErrNotConnected)
}
