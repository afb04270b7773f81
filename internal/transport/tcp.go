package transport

import (
	"context"
	"net"
	"time"
)

// TCPDialer connects straight to the player. A zero Timeout leaves the
// connect timeout to the operating system; a negative KeepAlive turns
// TCP keep-alive probes off.
type TCPDialer struct {
	Timeout   time.Duration
	KeepAlive time.Duration
}

// Dial opens a TCP connection. The player only speaks TCP, so any
// other network is rejected before dialing.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, net.UnknownNetworkError(network)
	}
	nd := &net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
	return nd.DialContext(ctx, network, address)
}

// Close has nothing to release.
func (d *TCPDialer) Close() error { return nil }
