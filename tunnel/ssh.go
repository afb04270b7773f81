package tunnel

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	verr "videre/internal/errors"
	"videre/util"
)

// SSHConfig holds everything needed to log in to a jump host.
type SSHConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	PromptPass    bool
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	ConnTimeout   time.Duration

	// Prompt reads passwords and key passphrases. Nil uses
	// TerminalPrompt.
	Prompt Prompter

	// KeepAlive is the interval between keepalive@openssh.com probes.
	// Zero disables probing.
	KeepAlive time.Duration
}

// SSHTunnel implements [Tunnel] with a single ssh.Client shared by
// every forwarded connection.
type SSHTunnel struct {
	config *SSHConfig
	logger *util.Logger

	mu     sync.RWMutex
	client *ssh.Client
	alive  bool
	done   chan struct{}
}

// NewSSHTunnel creates a tunnel that is ready to [SSHTunnel.Connect].
func NewSSHTunnel(cfg *SSHConfig, logger *util.Logger) *SSHTunnel {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = 30 * time.Second
	}
	return &SSHTunnel{config: cfg, logger: logger}
}

func (t *SSHTunnel) addr() string {
	return net.JoinHostPort(t.config.Host, strconv.Itoa(t.config.Port))
}

// Connect logs in to the jump host.
func (t *SSHTunnel) Connect(ctx context.Context) error {
	auth, err := BuildAuthMethods(t.config)
	if err != nil {
		return verr.WrapSSH("auth", t.config.Host, t.config.Port, err)
	}
	hostKeys, err := hostKeyCallback(t.config)
	if err != nil {
		return verr.WrapSSH("hostkey", t.config.Host, t.config.Port, err)
	}

	addr := t.addr()
	t.logger.Debug("ssh: dialing %s as %s", addr, t.config.User)

	d := net.Dialer{Timeout: t.config.ConnTimeout}
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return verr.Wrap("dial", addr, err)
	}

	conn, chans, reqs, err := ssh.NewClientConn(raw, addr, &ssh.ClientConfig{
		User:            t.config.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         t.config.ConnTimeout,
	})
	if err != nil {
		raw.Close()
		return verr.WrapSSH("handshake", t.config.Host, t.config.Port, err)
	}

	client := ssh.NewClient(conn, chans, reqs)
	done := make(chan struct{})

	t.mu.Lock()
	t.client = client
	t.alive = true
	t.done = done
	t.mu.Unlock()

	go t.wait(client, done)
	if t.config.KeepAlive > 0 {
		go t.keepAlive(client, done)
	}
	return nil
}

// Dial opens address on the far side of the jump host.
func (t *SSHTunnel) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	t.mu.RLock()
	client, alive := t.client, t.alive
	t.mu.RUnlock()

	if !alive || client == nil {
		return nil, verr.ErrTunnelClosed
	}

	t.logger.Debug("ssh: forwarding %s %s", network, address)
	conn, err := client.DialContext(ctx, network, address)
	if err != nil {
		return nil, verr.WrapSSH("forward", t.config.Host, t.config.Port, err)
	}
	return conn, nil
}

// Close logs out of the jump host.
func (t *SSHTunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.alive = false
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// IsAlive reports whether the jump host connection is still up.
func (t *SSHTunnel) IsAlive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.alive
}

func (t *SSHTunnel) wait(client *ssh.Client, done chan struct{}) {
	err := client.Wait()
	close(done)

	t.mu.Lock()
	if t.client == client {
		t.alive = false
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Debug("ssh: jump host connection closed: %v", err)
	}
}

func (t *SSHTunnel) keepAlive(client *ssh.Client, done chan struct{}) {
	tick := time.NewTicker(t.config.KeepAlive)
	defer tick.Stop()

	for {
		select {
		case <-done:
			return
		case <-tick.C:
			if _, _, err := client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
				t.logger.Warn("ssh: keepalive to %s failed: %v", t.addr(), err)
				client.Close()
				return
			}
		}
	}
}
