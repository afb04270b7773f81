// Package receiver is the player's side of the control socket: it
// listens, serves one remote at a time, and dispatches each command
// byte to a handler.  It stands in for the player during development
// and in tests.
package receiver

import (
	"context"
	"fmt"
	"net"
	"sync"

	"videre/internal/metrics"
	"videre/internal/remote"
	"videre/util"
)

// HandlerFunc reacts to one command.
type HandlerFunc func(cmd remote.Command)

// Receiver accepts remotes on Address.
type Receiver struct {
	Address string // "host:port" or ":port"
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Fallback sees commands without a registered handler.  nil
	// ignores them.
	Fallback HandlerFunc

	mu       sync.Mutex
	handlers map[remote.Command]HandlerFunc
	ln       net.Listener
}

// New creates a receiver for address.
func New(address string, logger *util.Logger, m *metrics.Collector) *Receiver {
	if logger == nil {
		logger = util.Nop()
	}
	return &Receiver{
		Address:  address,
		Logger:   logger,
		Metrics:  m,
		handlers: make(map[remote.Command]HandlerFunc),
	}
}

// Handle registers fn for cmd, replacing any earlier handler.
func (r *Receiver) Handle(cmd remote.Command, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = make(map[remote.Command]HandlerFunc)
	}
	r.handlers[cmd] = fn
}

// Listen binds the socket.  Serve calls it when needed; calling it
// first lets the caller learn the bound address.
func (r *Receiver) Listen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", r.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", r.Address, err)
	}
	r.ln = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (r *Receiver) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ln == nil {
		return nil
	}
	return r.ln.Addr()
}

// Serve accepts remotes one at a time until ctx is cancelled.  A new
// remote is accepted only after the previous one disconnects.
func (r *Receiver) Serve(ctx context.Context) error {
	if err := r.Listen(); err != nil {
		return err
	}
	r.mu.Lock()
	ln := r.ln
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.ln = nil
		r.mu.Unlock()
		ln.Close()
	}()

	r.Logger.Info("listening for remotes on %s", ln.Addr())

	// Shut the listener down when the context expires.
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}
		r.serveConn(ctx, conn)
	}
}

func (r *Receiver) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	peer := conn.RemoteAddr().String()
	r.Logger.Info("remote connected from %s", peer)
	r.Metrics.ConnectionOpened()
	defer r.Metrics.ConnectionClosed()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	buf, release := util.Borrow()
	defer release()

	for {
		n, err := conn.Read(buf)
		r.Metrics.BytesReceived(int64(n))
		for _, b := range buf[:n] {
			r.dispatch(remote.Command(b))
		}
		if err != nil {
			r.Logger.Info("remote %s disconnected", peer)
			r.Logger.Debug("read from %s: %v", peer, err)
			return
		}
	}
}

func (r *Receiver) dispatch(cmd remote.Command) {
	r.mu.Lock()
	fn := r.handlers[cmd]
	r.mu.Unlock()

	switch {
	case fn != nil:
		r.Logger.Verbose("command %s", cmd)
		fn(cmd)
	case r.Fallback != nil:
		r.Logger.Verbose("unhandled command %s", cmd)
		r.Fallback(cmd)
	default:
		r.Logger.Debug("ignoring %s", cmd)
	}
}
