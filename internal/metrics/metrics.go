// Package metrics provides lock-free counters for a remote session and
// exposes them to Prometheus.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector tracks runtime metrics for one videre process.
type Collector struct {
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	connectAttempts   atomic.Int64
	connectFailures   atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64
	commandsSent      atomic.Int64
	sendFailures      atomic.Int64
	errorsTotal       atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connections ──────────────────────────────────────────────────────

// ConnectAttempt counts a sign-in attempt.
func (c *Collector) ConnectAttempt() {
	if c == nil {
		return
	}
	c.connectAttempts.Add(1)
}

// ConnectFailed counts a sign-in attempt that did not produce a client.
func (c *Collector) ConnectFailed(msg string) {
	if c == nil {
		return
	}
	c.connectFailures.Add(1)
	c.RecordError(msg)
}

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// ConnectFailures returns how many sign-in attempts failed.
func (c *Collector) ConnectFailures() int64 {
	if c == nil {
		return 0
	}
	return c.connectFailures.Load()
}

// ── I/O ──────────────────────────────────────────────────────────────

// BytesSent records n bytes written to the player.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// BytesReceived records n bytes read from the player.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// CommandSent counts a playback command delivered to the player.
func (c *Collector) CommandSent() {
	if c == nil {
		return
	}
	c.commandsSent.Add(1)
}

// CommandsSent returns the number of playback commands delivered.
func (c *Collector) CommandsSent() int64 {
	if c == nil {
		return 0
	}
	return c.commandsSent.Load()
}

// SendFailed counts a write that tore the connection down.
func (c *Collector) SendFailed(msg string) {
	if c == nil {
		return
	}
	c.sendFailures.Add(1)
	c.RecordError(msg)
}

// SendFailures returns how many writes tore the connection down.
func (c *Collector) SendFailures() int64 {
	if c == nil {
		return 0
	}
	return c.sendFailures.Load()
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	ConnectionsActive int64  `json:"connections_active"`
	ConnectionsTotal  int64  `json:"connections_total"`
	ConnectAttempts   int64  `json:"connect_attempts"`
	ConnectFailures   int64  `json:"connect_failures"`
	BytesIn           int64  `json:"bytes_in"`
	BytesOut          int64  `json:"bytes_out"`
	CommandsSent      int64  `json:"commands_sent"`
	SendFailures      int64  `json:"send_failures"`
	ErrorsTotal       int64  `json:"errors_total"`
	LastError         string `json:"last_error,omitempty"`
	LastErrorMessage  string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		ConnectAttempts:   c.connectAttempts.Load(),
		ConnectFailures:   c.connectFailures.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		CommandsSent:      c.commandsSent.Load(),
		SendFailures:      c.sendFailures.Load(),
		ErrorsTotal:       c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	data, _ := json.MarshalIndent(c.Snapshot(), "", "  ")
	return string(data)
}

// ── Prometheus ───────────────────────────────────────────────────────

// Register exposes the collector's counters on reg under the
// "videre_" namespace.  The atomics stay the source of truth; the
// Prometheus collectors read them on scrape.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if c == nil {
		return nil
	}

	counter := func(name, help string, v *atomic.Int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "videre", Name: name, Help: help,
		}, func() float64 { return float64(v.Load()) })
	}

	cs := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "videre", Name: "connections_active",
			Help: "Open connections to the player.",
		}, func() float64 { return float64(c.connectionsActive.Load()) }),
		counter("connections_total", "Connections established.", &c.connectionsTotal),
		counter("connect_attempts_total", "Sign-in attempts started.", &c.connectAttempts),
		counter("connect_failures_total", "Sign-in attempts that failed.", &c.connectFailures),
		counter("bytes_in_total", "Bytes read from the player.", &c.bytesIn),
		counter("bytes_out_total", "Bytes written to the player.", &c.bytesOut),
		counter("commands_sent_total", "Playback commands delivered.", &c.commandsSent),
		counter("send_failures_total", "Writes that tore down the connection.", &c.sendFailures),
		counter("errors_total", "Errors recorded.", &c.errorsTotal),
	}
	for _, col := range cs {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}
