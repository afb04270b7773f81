package metrics

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Connections(t *testing.T) {
	c := New()

	c.ConnectionOpened()
	c.ConnectionOpened()
	if c.ActiveConnections() != 2 {
		t.Errorf("active = %d, want 2", c.ActiveConnections())
	}

	c.ConnectionClosed()
	if c.ActiveConnections() != 1 {
		t.Errorf("active = %d, want 1", c.ActiveConnections())
	}
	if c.TotalConnections() != 2 {
		t.Errorf("total should remain 2, got %d", c.TotalConnections())
	}
}

func TestCollector_SignIn(t *testing.T) {
	c := New()

	c.ConnectAttempt()
	c.ConnectAttempt()
	c.ConnectFailed("connection refused")

	s := c.Snapshot()
	if s.ConnectAttempts != 2 || s.ConnectFailures != 1 {
		t.Errorf("attempts=%d failures=%d", s.ConnectAttempts, s.ConnectFailures)
	}
	if s.ErrorsTotal != 1 || s.LastErrorMessage != "connection refused" {
		t.Errorf("errors=%d last=%q", s.ErrorsTotal, s.LastErrorMessage)
	}
}

func TestCollector_IO(t *testing.T) {
	c := New()

	c.BytesSent(1)
	c.BytesSent(1)
	c.BytesReceived(16)
	c.CommandSent()
	c.SendFailed("broken pipe")

	if c.TotalBytesOut() != 2 {
		t.Errorf("bytes out = %d, want 2", c.TotalBytesOut())
	}
	if c.TotalBytesIn() != 16 {
		t.Errorf("bytes in = %d, want 16", c.TotalBytesIn())
	}
	if c.CommandsSent() != 1 {
		t.Errorf("commands = %d, want 1", c.CommandsSent())
	}
	if c.SendFailures() != 1 || c.ErrorCount() != 1 {
		t.Errorf("send failures = %d, errors = %d", c.SendFailures(), c.ErrorCount())
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	c.ConnectAttempt()
	c.ConnectFailed("x")
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.BytesSent(1)
	c.BytesReceived(1)
	c.CommandSent()
	c.SendFailed("x")
	c.RecordError("x")

	if c.ActiveConnections() != 0 || c.ErrorCount() != 0 {
		t.Error("nil collector should report zeros")
	}
	if err := c.Register(prometheus.NewRegistry()); err != nil {
		t.Errorf("nil Register: %v", err)
	}
	_ = c.JSON()
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.ConnectionOpened()
	c.CommandSent()

	var s Snapshot
	if err := json.Unmarshal([]byte(c.JSON()), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if s.ConnectionsActive != 1 || s.CommandsSent != 1 {
		t.Errorf("unexpected snapshot %+v", s)
	}
}

func TestCollector_Register(t *testing.T) {
	c := New()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatal(err)
	}

	c.ConnectionOpened()
	c.BytesSent(3)

	want := `
# HELP videre_bytes_out_total Bytes written to the player.
# TYPE videre_bytes_out_total counter
videre_bytes_out_total 3
# HELP videre_connections_active Open connections to the player.
# TYPE videre_connections_active gauge
videre_connections_active 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want),
		"videre_bytes_out_total", "videre_connections_active"); err != nil {
		t.Error(err)
	}

	if err := c.Register(reg); err == nil {
		t.Error("registering twice should fail")
	}
}
