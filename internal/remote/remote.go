package remote

import (
	"videre/internal/metrics"
	"videre/internal/session"
)

// Sender is the part of a session a Remote writes through.
type Sender interface {
	Send(data []byte) error
}

var _ Sender = (*session.Session)(nil)

// Remote sends playback commands over a session.
type Remote struct {
	Session Sender
	Metrics *metrics.Collector
}

// New returns a Remote bound to s.
func New(s Sender, m *metrics.Collector) *Remote {
	return &Remote{Session: s, Metrics: m}
}

// Send writes cmd.  When the session is disconnected the byte is
// dropped and the session's error is returned for display.
func (r *Remote) Send(cmd Command) error {
	if err := r.Session.Send([]byte{byte(cmd)}); err != nil {
		return err
	}
	r.Metrics.CommandSent()
	return nil
}

// Play starts playback.
func (r *Remote) Play() error { return r.Send(Play) }

// Pause stops playback.
func (r *Remote) Pause() error { return r.Send(Pause) }

// Toggle flips between playing and paused.
func (r *Remote) Toggle() error { return r.Send(PauseOrResume) }
