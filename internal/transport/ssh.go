package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"videre/tunnel"
	"videre/util"
)

// SSHDialer routes connections through an SSH jump host.  The login
// happens on the first Dial, and again after the jump host drops.
type SSHDialer struct {
	tunnel tunnel.Tunnel
	config *tunnel.SSHConfig
	logger *util.Logger
	mu     sync.Mutex
}

// NewSSHDialer creates a dialer that forwards through a jump host.
func NewSSHDialer(cfg *tunnel.SSHConfig, logger *util.Logger) *SSHDialer {
	return &SSHDialer{
		tunnel: tunnel.NewSSHTunnel(cfg, logger),
		config: cfg,
		logger: logger,
	}
}

// Login connects to the jump host now rather than on the first Dial.
// It is a no-op while the login is alive.
func (d *SSHDialer) Login(ctx context.Context) error { return d.ensure(ctx) }

func (d *SSHDialer) ensure(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tunnel.IsAlive() {
		return nil
	}

	d.logger.Verbose("logging in to jump host %s@%s:%d",
		d.config.User, d.config.Host, d.config.Port)

	if err := d.tunnel.Connect(ctx); err != nil {
		return fmt.Errorf("tunnel: %w", err)
	}
	d.logger.Verbose("jump host ready")
	return nil
}

// Dial connects to address through the jump host.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := d.ensure(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Dial(ctx, network, address)
}

// Close logs out of the jump host.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tunnel.Close()
}
