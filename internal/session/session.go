// Package session holds the one live connection to the player.
//
// A Session is created once by the composition root and shared by
// whatever drives it (the CLI modes, the terminal shell).  It owns zero
// or one [client.Client], moves between Disconnected, Connecting and
// Connected, and tears the client down on the first failed write.
// Every field is guarded by the session mutex; there is no package
// level state.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"videre/internal/client"
	verr "videre/internal/errors"
	"videre/internal/metrics"
	"videre/util"
)

// State is the lifecycle position of a Session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Session.
type Options struct {
	// Client is the template every sign-in attempt builds its client
	// from.  Metrics and Logger fall back to the session's own.
	Client client.Options

	// ConnectAttempts bounds the dials per sign-in.  Values below 2
	// dial once.
	ConnectAttempts int
	RetryDelay      time.Duration
	MaxRetryDelay   time.Duration

	// Handshaker runs after the socket opens.  nil skips it.
	Handshaker Handshaker

	// OnResult receives every sign-in outcome, after the channel
	// returned by Connect.  It runs on the sign-in goroutine.
	OnResult func(Result)

	Metrics *metrics.Collector
	Logger  *util.Logger
}

// Session is the single connection holder.
type Session struct {
	opts   Options
	logger *util.Logger

	mu      sync.Mutex
	state   State
	client  *client.Client
	attempt uuid.UUID          // current sign-in, uuid.Nil when none
	pending *client.Client     // client being signed in
	cancel  context.CancelFunc // aborts the current sign-in

	wg sync.WaitGroup
}

// New creates a disconnected session.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = util.Nop()
	}
	if opts.Client.Logger == nil {
		opts.Client.Logger = opts.Logger
	}
	if opts.Client.Metrics == nil {
		opts.Client.Metrics = opts.Metrics
	}
	return &Session{opts: opts, logger: opts.Logger}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsConnected reports whether a client exists and its socket is open.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	c := s.client
	s.mu.Unlock()
	return c != nil && c.IsConnected()
}

// RemoteAddr returns the connected player's address, or "".
func (s *Session) RemoteAddr() string {
	s.mu.Lock()
	c := s.client
	s.mu.Unlock()
	if c == nil {
		return ""
	}
	return c.RemoteAddr()
}

// SendData writes data to the player.  It does nothing when no client
// is connected, and a failed write disconnects the session without
// reporting the error.
func (s *Session) SendData(data []byte) {
	_ = s.Send(data)
}

// Send is SendData for callers that want the outcome.  It returns
// [verr.ErrNotConnected] when there is nothing to write to, and the
// write error after tearing the client down.
func (s *Session) Send(data []byte) error {
	s.mu.Lock()
	c := s.client
	s.mu.Unlock()

	if c == nil || !c.IsConnected() {
		return verr.ErrNotConnected
	}

	if err := c.SendData(data); err != nil {
		s.logger.Warn("send to %s failed, disconnecting: %v", c.RemoteAddr(), err)
		s.opts.Metrics.SendFailed(err.Error())
		s.teardown(c)
		return err
	}
	return nil
}

// teardown discards c if it is still the session's client.
func (s *Session) teardown(c *client.Client) {
	s.mu.Lock()
	if s.client == c {
		s.client = nil
		s.state = Disconnected
	}
	s.mu.Unlock()

	if err := c.Close(); err != nil {
		s.logger.Debug("close after failed send: %v", err)
	}
}

// Disconnect closes the client, or aborts a sign-in in progress.  It is
// a no-op when already disconnected.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	c, pending, cancel := s.client, s.pending, s.cancel
	s.client, s.pending, s.cancel = nil, nil, nil
	s.attempt = uuid.Nil
	s.state = Disconnected
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pending != nil {
		pending.Close() //nolint:errcheck
	}
	if c == nil {
		return nil
	}
	s.logger.Verbose("disconnecting from %s", c.RemoteAddr())
	if err := c.Close(); err != nil && !verr.Is(err, verr.ErrNotConnected) {
		return err
	}
	return nil
}

// Close disconnects and waits for any sign-in goroutine to finish.
func (s *Session) Close() error {
	err := s.Disconnect()
	s.wg.Wait()
	return err
}
