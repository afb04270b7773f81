// Package config defines the runtime configuration for the videre
// remote and the helpers that validate what a user types as a player
// address.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	verr "videre/internal/errors"
)

// Config holds every tuneable for one videre run.
type Config struct {
	// ── Player endpoint ──────────────────────────────────────────────
	Host            string            `yaml:"host" env:"HOST"`
	Port            int               `yaml:"port" env:"PORT"`
	NoDNS           bool              `yaml:"no_dns" env:"NO_DNS"`
	Timeout         time.Duration     `yaml:"timeout" env:"TIMEOUT"`
	ConnectAttempts int               `yaml:"connect_attempts" env:"CONNECT_ATTEMPTS"`
	Servers         map[string]string `yaml:"servers"` // name → endpoint
	QR              string            `yaml:"-" env:"QR"`

	// ── SSH jump host ────────────────────────────────────────────────
	TunnelSpec     string `yaml:"tunnel" env:"TUNNEL"`
	TunnelEnabled  bool   `yaml:"-"`
	TunnelUser     string `yaml:"-"`
	TunnelHost     string `yaml:"-"`
	TunnelPort     int    `yaml:"-"`
	SSHKeyPath     string `yaml:"ssh_key" env:"SSH_KEY"`
	SSHPassword    bool   `yaml:"ssh_password" env:"SSH_PASSWORD"`
	UseSSHAgent    bool   `yaml:"ssh_agent" env:"SSH_AGENT"`
	StrictHostKey  bool   `yaml:"strict_hostkey" env:"STRICT_HOSTKEY"`
	KnownHostsPath string `yaml:"known_hosts" env:"KNOWN_HOSTS"`

	// ── Modes ────────────────────────────────────────────────────────
	Listen        bool     `yaml:"-"`
	ListenAddress string   `yaml:"listen_address" env:"LISTEN_ADDRESS"`
	TUI           bool     `yaml:"-"`
	Raw           bool     `yaml:"-"`
	Commands      []string `yaml:"-"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose       int    `yaml:"verbose" env:"VERBOSE"`
	LogFormat     string `yaml:"log_format" env:"LOG_FORMAT"`
	LogFile       string `yaml:"log_file" env:"LOG_FILE"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb" env:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `yaml:"log_max_backups" env:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `yaml:"log_max_age_days" env:"LOG_MAX_AGE_DAYS"`
	MetricsAddr   string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	Stats         bool   `yaml:"-"`
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:@]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "pi@media-box.lan:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ApplyTunnelSpec parses TunnelSpec into the Tunnel* fields.
func (c *Config) ApplyTunnelSpec() error {
	if c.TunnelSpec == "" {
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return &verr.ConfigError{Field: "tunnel", Value: c.TunnelSpec, Message: err.Error()}
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ResolveServer replaces Host with the endpoint registered under that
// name in Servers, if any.
func (c *Config) ResolveServer() error {
	ep, ok := c.Servers[c.Host]
	if !ok {
		return nil
	}
	host, port, err := ParseEndpoint(ep)
	if err != nil {
		return &verr.ConfigError{Field: "config", Value: c.Host, Message: err.Error(),
			Hint: "fix the entry under servers: in the config file"}
	}
	c.Host = host
	c.Port = port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := ValidatePort(c.Port); err != nil {
		return &verr.ConfigError{
			Field: "port", Value: c.Port, Message: err.Error(),
			Hint: fmt.Sprintf("the player listens on %d by default", DefaultPort),
		}
	}

	switch {
	case c.Listen:
		if c.TUI {
			return &verr.ConfigError{Field: "listen", Message: "cannot be combined with --tui"}
		}
		if c.TunnelEnabled {
			return &verr.ConfigError{Field: "listen", Message: "listening through an SSH tunnel is not supported"}
		}
	case c.TUI:
		// The connector screen asks for the host.
	default:
		if c.Host == "" {
			return &verr.ConfigError{
				Field:   "host",
				Message: "player host is required",
				Hint:    "videre <host> [port], or --qr a,b,c,d,port",
			}
		}
	}

	if c.Raw && len(c.Commands) > 0 {
		return &verr.ConfigError{Field: "raw", Message: "--raw and -c are mutually exclusive"}
	}
	if c.TUI && (c.Raw || len(c.Commands) > 0) {
		return &verr.ConfigError{Field: "tui", Message: "--tui is mutually exclusive with --raw and -c"}
	}

	if c.ConnectAttempts < 1 {
		return &verr.ConfigError{
			Field: "connect-attempts", Value: c.ConnectAttempts,
			Message: "must be at least 1",
		}
	}
	if c.Timeout < 0 {
		return &verr.ConfigError{Field: "timeout", Value: c.Timeout, Message: "must not be negative"}
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return &verr.ConfigError{
			Field: "log-format", Value: c.LogFormat,
			Message: "unknown format", Hint: "use text or json",
		}
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return &verr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
	}
	return nil
}
