// Package core is the orchestration layer.  It composes the dialer,
// session and capabilities into complete operational modes and
// provides a builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  client  →  session  →  capability / tui  →  core  →  cmd (CLI)
//
// The builder in this package is the single dispatch point; it also
// owns the one Session a run uses.
package core

import "context"

// Mode represents a complete operational mode of videre (connect,
// listen, or the interactive shell).  Each mode owns its full
// lifecycle from sign-in to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
