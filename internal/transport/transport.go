// Package transport decides how bytes reach the player: a direct TCP
// socket, or a socket forwarded through an SSH jump host.  What flows
// over the connection is the client and session's business.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound connections to the player.
type Dialer interface {
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases long-lived resources (an SSH login).  Stateless
	// dialers return nil.
	Close() error
}
