// Package tunnel lets the remote reach a player that is only visible
// from behind an SSH jump host, using golang.org/x/crypto/ssh.
package tunnel

import (
	"context"
	"net"
)

// Tunnel is a login on a jump host. Once Connect succeeds, Dial opens
// connections on the far side until the login drops or Close is
// called, after which IsAlive reports false and Dial fails with
// ErrTunnelClosed.
type Tunnel interface {
	Connect(ctx context.Context) error
	Dial(ctx context.Context, network, address string) (net.Conn, error)
	Close() error
	IsAlive() bool
}

var _ Tunnel = (*SSHTunnel)(nil)
