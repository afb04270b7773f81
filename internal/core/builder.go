package core

import (
	"fmt"
	"net"

	"videre/config"
	"videre/internal/capability"
	"videre/internal/client"
	"videre/internal/metrics"
	"videre/internal/receiver"
	"videre/internal/session"
	"videre/internal/transport"
	"videre/tunnel"
	"videre/util"
)

// Build constructs the appropriate Mode from the given configuration.
// This is the single dispatch point between the CLI and the modes.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	switch {
	case cfg.Listen:
		return buildListen(cfg, logger, m), nil
	case cfg.TUI:
		return buildShell(cfg, logger, m), nil
	default:
		return buildConnect(cfg, logger, m)
	}
}

// ── mode builders ────────────────────────────────────────────────────

func buildConnect(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	if cfg.NoDNS && !cfg.TunnelEnabled && net.ParseIP(cfg.Host) == nil {
		return nil, fmt.Errorf(
			"cannot parse %q as an IP address (DNS disabled with -n)",
			cfg.Host)
	}

	dialer := buildDialer(cfg, logger)
	return &ConnectMode{
		Session:    BuildSession(cfg, dialer, logger, m),
		Dialer:     dialer,
		Capability: buildCapability(cfg),
		Host:       cfg.Host,
		Port:       cfg.Port,
		Logger:     logger,
		Metrics:    m,
	}, nil
}

func buildShell(cfg *config.Config, logger *util.Logger, m *metrics.Collector) Mode {
	dialer := buildDialer(cfg, logger)
	return &ShellMode{
		Session: BuildSession(cfg, dialer, logger, m),
		Dialer:  dialer,
		Host:    cfg.Host,
		Port:    cfg.Port,
		Logger:  logger,
		Metrics: m,
	}
}

func buildListen(cfg *config.Config, logger *util.Logger, m *metrics.Collector) Mode {
	addr := util.FormatAddr(cfg.ListenAddress, cfg.Port)
	return &ListenMode{Receiver: receiver.New(addr, logger, m)}
}

// ── shared helpers ───────────────────────────────────────────────────

// BuildSession creates the run's session over dialer.
func BuildSession(cfg *config.Config, dialer transport.Dialer, logger *util.Logger, m *metrics.Collector) *session.Session {
	return session.New(session.Options{
		Client: client.Options{
			Dialer:        dialer,
			NoDNS:         cfg.NoDNS,
			RemoteResolve: cfg.TunnelEnabled,
		},
		ConnectAttempts: cfg.ConnectAttempts,
		RetryDelay:      config.DefaultRetryDelay,
		MaxRetryDelay:   config.DefaultMaxRetryDelay,
		Metrics:         m,
		Logger:          logger,
	})
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   config.DefaultSSHTimeout,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.Timeout}
}

// buildCapability selects what to do once signed in.
func buildCapability(cfg *config.Config) capability.Capability {
	if cfg.Raw {
		return &capability.Pipe{}
	}
	return &capability.Commands{Args: cfg.Commands}
}
