package core

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"videre/internal/receiver"
	"videre/util"
)

// syncBuffer is a bytes.Buffer safe for the receiver goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// TestListenMode_PrintsCommands verifies that ListenMode reports every
// known command and skips unknown bytes.
func TestListenMode_PrintsCommands(t *testing.T) {
	r := receiver.New("127.0.0.1:0", util.NewLogger(0), nil)
	if err := r.Listen(); err != nil {
		t.Fatal(err)
	}
	out := &syncBuffer{}
	mode := &ListenMode{Receiver: r, Stdout: out}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() { serverErr <- mode.Run(ctx) }()

	conn, err := net.DialTimeout("tcp", r.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Write([]byte{0, 7, 1, 2}) //nolint:errcheck
	conn.Close()

	want := "play\npause\npause-or-resume\n"
	deadline := time.Now().Add(3 * time.Second)
	for out.String() != want && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	cancel()
	select {
	case err := <-serverErr:
		if err != nil {
			t.Errorf("Run returned %v after cancel", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

// TestListenMode_ReAccepts verifies remotes can come and go.
func TestListenMode_ReAccepts(t *testing.T) {
	r := receiver.New("127.0.0.1:0", util.NewLogger(0), nil)
	if err := r.Listen(); err != nil {
		t.Fatal(err)
	}
	out := &syncBuffer{}
	mode := &ListenMode{Receiver: r, Stdout: out}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	go mode.Run(ctx) //nolint:errcheck

	for i := 0; i < 3; i++ {
		conn, err := net.DialTimeout("tcp", r.Addr().String(), time.Second)
		if err != nil {
			t.Fatalf("conn %d dial: %v", i, err)
		}
		conn.Write([]byte{0}) //nolint:errcheck
		conn.Close()
	}

	deadline := time.Now().Add(3 * time.Second)
	for strings.Count(out.String(), "play\n") < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := strings.Count(out.String(), "play\n"); n != 3 {
		t.Errorf("saw %d plays, want 3", n)
	}
}
