// Package capability defines what happens once the session is
// signed in.  Each Capability encapsulates a single behaviour (send
// named commands, pipe raw bytes) and operates on an Env rather than
// on os.Stdin and a socket, which keeps capabilities testable and
// decoupled from transport details.
package capability

import (
	"context"
	"io"

	"videre/internal/remote"
	"videre/internal/session"
	"videre/util"
)

// Env is everything a capability may touch.
type Env struct {
	Session *session.Session
	Remote  *remote.Remote
	Stdin   io.Reader
	Stdout  io.Writer
	Logger  *util.Logger
}

// Capability drives a connected session.  Implementations include
// Commands and Pipe.
type Capability interface {
	// Handle blocks until the input is exhausted, the session drops,
	// or the context is cancelled.
	Handle(ctx context.Context, env *Env) error
}
