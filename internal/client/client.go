// Package client owns the raw TCP socket to the player.
//
// A Client dials once, writes and reads bytes, and closes.  It does not
// retry, reconnect, or know anything about sign-in; the session layer
// decides when a client is created and thrown away.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	verr "videre/internal/errors"
	"videre/internal/metrics"
	"videre/internal/transport"
	"videre/util"
)

// Options configures a Client.  Zero values are usable.
type Options struct {
	// Dialer defaults to a TCPDialer with the OS connect timeout.
	Dialer transport.Dialer

	// NoDNS restricts the host to numeric addresses.
	NoDNS bool

	// RemoteResolve hands the host name to the dialer unresolved, so a
	// jump host can resolve names on its side.
	RemoteResolve bool

	Metrics *metrics.Collector
	Logger  *util.Logger
}

// Client is a single TCP connection to the player.
type Client struct {
	opts Options

	mu     sync.Mutex // guards conn, addr
	conn   net.Conn
	addr   string
	closed bool

	wmu sync.Mutex // serialises writes
	rmu sync.Mutex // serialises reads
}

// New returns an unconnected client.
func New(opts Options) *Client {
	if opts.Dialer == nil {
		opts.Dialer = &transport.TCPDialer{}
	}
	if opts.Logger == nil {
		opts.Logger = util.Nop()
	}
	return &Client{opts: opts}
}

// Connect dials host:port.  A client connects at most once: a second
// call returns [verr.ErrAlreadyConnected], and a closed client returns
// [net.ErrClosed].
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	if err := c.checkFresh(); err != nil {
		return err
	}

	target := host
	if !c.opts.RemoteResolve {
		ip, err := util.ResolveHost(ctx, host, c.opts.NoDNS)
		if err != nil {
			return verr.Wrap("dial", util.FormatAddr(host, port), err)
		}
		target = ip
	}
	addr := util.FormatAddr(target, port)

	c.opts.Logger.Debug("dialing %s", addr)
	conn, err := c.opts.Dialer.Dial(ctx, "tcp", addr)
	if err != nil {
		return verr.Wrap("dial", addr, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.freshLocked(); err != nil {
		conn.Close()
		return err
	}
	c.conn = conn
	c.addr = conn.RemoteAddr().String()
	c.opts.Metrics.ConnectionOpened()
	return nil
}

func (c *Client) checkFresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.freshLocked()
}

func (c *Client) freshLocked() error {
	if c.closed {
		return fmt.Errorf("connect: %w", net.ErrClosed)
	}
	if c.conn != nil {
		return verr.ErrAlreadyConnected
	}
	return nil
}

func (c *Client) current() (net.Conn, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn, c.addr
}

// IsConnected reports whether the socket is open.
func (c *Client) IsConnected() bool {
	conn, _ := c.current()
	return conn != nil
}

// RemoteAddr returns the peer address, or "" before Connect.
func (c *Client) RemoteAddr() string {
	_, addr := c.current()
	return addr
}

// SendData writes all of data, blocking until done or failed.
func (c *Client) SendData(data []byte) error {
	conn, addr := c.current()
	if conn == nil {
		return verr.ErrNotConnected
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	for len(data) > 0 {
		n, err := conn.Write(data)
		c.opts.Metrics.BytesSent(int64(n))
		if err != nil {
			return verr.Wrap("write", addr, err)
		}
		if n == 0 {
			return verr.Wrap("write", addr, io.ErrShortWrite)
		}
		data = data[n:]
	}
	return nil
}

// ReadData reads exactly n bytes.  If the stream ends first it returns
// what arrived along with an error wrapping [verr.ErrTruncatedStream].
func (c *Client) ReadData(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read: negative length %d", n)
	}
	conn, addr := c.current()
	if conn == nil {
		return nil, verr.ErrNotConnected
	}

	c.rmu.Lock()
	defer c.rmu.Unlock()

	buf := make([]byte, n)
	got, err := io.ReadFull(conn, buf)
	c.opts.Metrics.BytesReceived(int64(got))
	switch {
	case err == nil:
		return buf, nil
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return buf[:got], fmt.Errorf("read %s: got %d of %d bytes: %w",
			addr, got, n, verr.Join(verr.ErrTruncatedStream, err))
	default:
		return buf[:got], verr.Wrap("read", addr, err)
	}
}

// Close shuts the socket.  Closing twice, or closing a client that
// never connected, returns [verr.ErrNotConnected].
func (c *Client) Close() error {
	c.mu.Lock()
	conn, addr := c.conn, c.addr
	c.conn = nil
	c.closed = true
	c.mu.Unlock()

	if conn == nil {
		return verr.ErrNotConnected
	}
	c.opts.Metrics.ConnectionClosed()
	if err := conn.Close(); err != nil {
		return verr.Wrap("close", addr, err)
	}
	return nil
}
