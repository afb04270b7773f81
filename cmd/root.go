// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"videre/config"
	"videre/internal/core"
	verr "videre/internal/errors"
	"videre/internal/metrics"
	"videre/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X videre/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Output streams; tests swap them.
var (
	stdout io.Writer = os.Stdout //nolint:gochecknoglobals
	stderr io.Writer = os.Stderr //nolint:gochecknoglobals
)

// Execute parses args and runs the appropriate videre mode.
func Execute(ctx context.Context, args []string) error {
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("videre", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configFile string
	fs.StringVar(&configFile, "config", "", "YAML config file (default $"+config.ConfigPathEnv+")")

	// ── player ───────────────────────────────────────────────────
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Player port")
	fs.StringVar(&cfg.QR, "qr", cfg.QR, "Player QR payload a,b,c,d,port")
	fs.BoolVarP(&cfg.NoDNS, "no-dns", "n", cfg.NoDNS, "Numeric-only, no DNS resolution")
	fs.IntVar(&cfg.ConnectAttempts, "connect-attempts", cfg.ConnectAttempts, "Dial attempts per sign-in")

	var timeoutSec int
	fs.IntVarP(&timeoutSec, "timeout", "w", 0, "Connect timeout in seconds")

	// ── modes ────────────────────────────────────────────────────
	fs.StringArrayVarP(&cfg.Commands, "command", "c", nil, "Send a command: play, pause, toggle or 0-255 (repeatable)")
	fs.BoolVar(&cfg.Raw, "raw", false, "Pipe stdin to the player byte for byte")
	fs.BoolVar(&cfg.TUI, "tui", false, "Interactive shell")
	fs.BoolVarP(&cfg.Listen, "listen", "l", false, "Act as the player and print received commands")
	fs.StringVar(&cfg.ListenAddress, "listen-address", cfg.ListenAddress, "Address to listen on with -l")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach the player via SSH jump host [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	var verbose int
	var quiet bool
	fs.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write logs to this rotated file")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address")
	fs.BoolVar(&cfg.Stats, "stats", false, "Print connection statistics on exit")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and print the plan")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "videre %s\n", version)
		return nil
	}

	if timeoutSec > 0 {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}
	cfg.Verbose += verbose
	if quiet {
		cfg.Verbose = 0
	}

	// ── endpoint ─────────────────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}
	if cfg.QR != "" {
		host, port, err := config.ParseEndpoint(cfg.QR)
		if err != nil {
			return &verr.ConfigError{Field: "qr", Value: cfg.QR, Message: err.Error()}
		}
		cfg.Host, cfg.Port = host, port
	}
	if err := cfg.ResolveServer(); err != nil {
		return err
	}
	if err := cfg.ApplyTunnelSpec(); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if dryRun {
		printPlan(cfg)
		return nil
	}
	if cfg.TUI && !term.IsTerminal(int(os.Stdin.Fd())) {
		return &verr.ConfigError{Field: "tui", Message: "needs an interactive terminal"}
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLoggerWithOptions(util.LogOptions{
		Verbosity:      cfg.Verbose,
		JSON:           cfg.LogFormat == "json",
		File:           cfg.LogFile,
		FileMaxSizeMB:  cfg.LogMaxSizeMB,
		FileMaxBackups: cfg.LogMaxBackups,
		FileMaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logger.Close()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.MetricsAddr, m, logger)
		if err != nil {
			return err
		}
		defer stop()
	}
	if cfg.Stats {
		defer func() { fmt.Fprintln(stderr, m.JSON()) }()
	}

	mode, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// configPath finds --config before the full parse so the file can
// supply flag defaults.
func configPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "--":
			return ""
		case a == "--config" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

// parsePositional reads "host", "host:port", "host port", a QR payload
// or a server name from the config file.  A bare host keeps the port
// from -p or the config.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
		return nil
	case 1:
		if _, named := cfg.Servers[remaining[0]]; named {
			cfg.Host = remaining[0]
			return nil
		}
		host, port, err := config.ParseEndpoint(remaining[0])
		if err != nil {
			return &verr.ConfigError{Field: "host", Value: remaining[0], Message: err.Error()}
		}
		cfg.Host = host
		if strings.ContainsAny(remaining[0], ":,") {
			cfg.Port = port
		}
		return nil
	case 2:
		port, err := strconv.Atoi(remaining[1])
		if err != nil {
			return &verr.ConfigError{Field: "port", Value: remaining[1], Message: "not a number"}
		}
		cfg.Host = remaining[0]
		cfg.Port = port
		return nil
	default:
		return fmt.Errorf("too many arguments (use -c for commands, --help for usage)")
	}
}

func serveMetrics(addr string, m *metrics.Collector, logger *util.Logger) (func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if err := m.Register(reg); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Verbose("serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx) //nolint:errcheck
	}, nil
}

func printPlan(cfg *config.Config) {
	mode := "connect"
	switch {
	case cfg.Listen:
		mode = "listen"
	case cfg.TUI:
		mode = "tui"
	case cfg.Raw:
		mode = "connect (raw)"
	}
	fmt.Fprintf(stdout, "mode:     %s\n", mode)
	if cfg.Listen {
		fmt.Fprintf(stdout, "listen:   %s\n", util.FormatAddr(cfg.ListenAddress, cfg.Port))
	} else if cfg.Host != "" {
		fmt.Fprintf(stdout, "player:   %s\n", util.FormatAddr(cfg.Host, cfg.Port))
	}
	if cfg.TunnelEnabled {
		fmt.Fprintf(stdout, "tunnel:   %s@%s:%d\n", cfg.TunnelUser, cfg.TunnelHost, cfg.TunnelPort)
	}
	if len(cfg.Commands) > 0 {
		fmt.Fprintf(stdout, "commands: %s\n", strings.Join(cfg.Commands, " "))
	}
	fmt.Fprintf(stdout, "attempts: %d\n", cfg.ConnectAttempts)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(stderr, `videre – remote control for the Videre player v%s

Usage:
  videre [options] <host>[:port] [-c command ...]     Send commands
  videre [options] <host> <port> < commands.txt       Commands from stdin
  videre --raw <host> < bytes.bin                     Pipe raw bytes
  videre --qr a,b,c,d,port -c toggle                  Use the player's QR code
  videre --tui [host]                                 Interactive shell
  videre -l [-p port]                                 Pretend to be the player

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(stderr, `
Examples:
  videre 192.168.1.5 -c play                        Start playback
  videre -v living-room -c toggle                   Named server from videre.yaml
  videre -T pi@media-box 10.0.0.7 -c pause          Through an SSH jump host
  echo pause | videre 192.168.1.5                   Pipe commands
`)
}
