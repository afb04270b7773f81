package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"videre/internal/client"
	verr "videre/internal/errors"
	"videre/internal/retry"
	"videre/util"
)

// Channel is the byte stream a Handshaker talks over.
type Channel interface {
	SendData(data []byte) error
	ReadData(n int) ([]byte, error)
}

// Handshaker runs the sign-in exchange on a freshly opened socket.  A
// non-nil error rejects the connection.
type Handshaker interface {
	Handshake(ctx context.Context, ch Channel) error
}

// HandshakeFunc adapts a function to [Handshaker].
type HandshakeFunc func(ctx context.Context, ch Channel) error

func (f HandshakeFunc) Handshake(ctx context.Context, ch Channel) error { return f(ctx, ch) }

// Result is the outcome of one sign-in.
type Result struct {
	ID       uuid.UUID
	Addr     string
	Err      error // nil on success
	Duration time.Duration
}

// OK reports whether the sign-in produced a connected client.
func (r Result) OK() bool { return r.Err == nil }

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("sign-in to %s failed after %s: %v", r.Addr, r.Duration.Round(time.Millisecond), r.Err)
	}
	return fmt.Sprintf("signed in to %s in %s", r.Addr, r.Duration.Round(time.Millisecond))
}

// Connect starts a sign-in to host:port in the background and returns
// at once.  The channel receives exactly one Result and is then closed.
// Connecting while connected returns [verr.ErrAlreadyConnected];
// connecting while a sign-in runs returns [verr.ErrConnectInProgress].
// Cancelling ctx aborts the sign-in.
func (s *Session) Connect(ctx context.Context, host string, port int) (<-chan Result, error) {
	s.mu.Lock()
	switch {
	case s.state == Connecting:
		s.mu.Unlock()
		return nil, verr.ErrConnectInProgress
	case s.client != nil && s.client.IsConnected():
		s.mu.Unlock()
		return nil, verr.ErrAlreadyConnected
	}

	actx, cancel := context.WithCancel(ctx)
	id := uuid.New()
	s.state = Connecting
	s.client = nil
	s.attempt = id
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	results := make(chan Result, 1)
	go s.signIn(actx, cancel, id, host, port, results)
	return results, nil
}

func (s *Session) signIn(ctx context.Context, cancel context.CancelFunc, id uuid.UUID, host string, port int, results chan<- Result) {
	defer s.wg.Done()
	defer cancel()

	start := time.Now()
	addr := util.FormatAddr(host, port)
	log := s.logger.With("attempt", id.String())

	s.opts.Metrics.ConnectAttempt()
	log.Verbose("signing in to %s", addr)

	var c *client.Client
	err := s.backoff(log).Do(ctx, func(attempt int) error {
		c = client.New(s.opts.Client)
		if !s.track(id, c) {
			return retry.Permanent(context.Canceled)
		}
		if err := c.Connect(ctx, host, port); err != nil {
			return err
		}
		if s.opts.Handshaker == nil {
			return nil
		}
		if err := s.opts.Handshaker.Handshake(ctx, c); err != nil {
			c.Close() //nolint:errcheck
			return retry.Permanent(fmt.Errorf("handshake: %w", err))
		}
		return nil
	})

	res := Result{ID: id, Addr: addr, Err: s.finish(id, c, err), Duration: time.Since(start)}
	if res.Err != nil {
		log.Warn("%s", res)
		s.opts.Metrics.ConnectFailed(res.Err.Error())
	} else {
		log.Info("%s", res)
	}

	results <- res
	close(results)
	if s.opts.OnResult != nil {
		s.opts.OnResult(res)
	}
}

func (s *Session) backoff(log *util.Logger) *retry.Backoff {
	b := retry.Attempts(s.opts.ConnectAttempts, s.opts.RetryDelay, s.opts.MaxRetryDelay)
	if b.MaxAttempts < 1 {
		b.MaxAttempts = 1
	}
	b.Retryable = verr.IsRetryable
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Verbose("dial %d/%d failed (%v), retrying in %s",
			attempt, b.MaxAttempts, err, wait.Round(time.Millisecond))
	}
	return b
}

// track records c as the client being signed in, unless the sign-in
// has been superseded.
func (s *Session) track(id uuid.UUID, c *client.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt != id {
		return false
	}
	s.pending = c
	return true
}

// finish installs c as the session client if the sign-in succeeded and
// is still current.  It returns the error to report.
func (s *Session) finish(id uuid.UUID, c *client.Client, err error) error {
	s.mu.Lock()
	current := s.attempt == id
	if current {
		s.attempt = uuid.Nil
		s.pending = nil
		s.cancel = nil
		if err == nil {
			s.client = c
			s.state = Connected
		} else {
			s.state = Disconnected
		}
	}
	s.mu.Unlock()

	if current {
		return err
	}
	// Disconnect ran while the sign-in was in flight.
	if c != nil {
		c.Close() //nolint:errcheck
	}
	return fmt.Errorf("sign-in aborted: %w", context.Canceled)
}
