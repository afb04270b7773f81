package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so CLI flags, the config file and the
// environment loader agree on them.

const (
	// DefaultPort is the port the Videre player listens on out of the box.
	DefaultPort = 13337

	// MinPort and MaxPort bound the port picker on the connector screen.
	MinPort = 1024
	MaxPort = 65535

	// DefaultSSHPort is the standard SSH port for jump hosts.
	DefaultSSHPort = 22

	// DefaultListenAddress is where the receiver binds in listen mode.
	DefaultListenAddress = "0.0.0.0"

	// DefaultConnectAttempts keeps the single-shot sign-in behaviour.
	DefaultConnectAttempts = 1

	// DefaultRetryDelay is the first backoff step between dial attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the backoff between dial attempts.
	DefaultMaxRetryDelay = 10 * time.Second

	// DefaultSSHTimeout bounds the jump-host handshake.
	DefaultSSHTimeout = 30 * time.Second

	// DefaultLogMaxSizeMB and friends configure log file rotation.
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxBackups  = 3
	DefaultLogMaxAgeDays  = 28
	DefaultLogFormat      = "text"
	DefaultConfigFileName = "videre.yaml"
)

// Default returns a Config populated with every default.
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		ListenAddress:   DefaultListenAddress,
		ConnectAttempts: DefaultConnectAttempts,
		Verbose:         1,
		LogFormat:       DefaultLogFormat,
		LogMaxSizeMB:    DefaultLogMaxSizeMB,
		LogMaxBackups:   DefaultLogMaxBackups,
		LogMaxAgeDays:   DefaultLogMaxAgeDays,
	}
}
