package cmd

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"videre/config"
	"videre/internal/receiver"
	"videre/internal/remote"
)

// capture redirects stdout/stderr for the duration of a test.
func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return out, errOut
}

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	out, _ := capture(t)
	if err := Execute(context.Background(), []string{"--version"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "videre ") {
		t.Errorf("output = %q", out.String())
	}
}

// TestExecute_Help verifies --help (and no args) returns without error.
func TestExecute_Help(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {}} {
		name := "no-args"
		if len(args) > 0 {
			name = args[0]
		}
		t.Run(name, func(t *testing.T) {
			_, errOut := capture(t)
			if err := Execute(context.Background(), args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(errOut.String(), "Usage:") {
				t.Error("usage not printed")
			}
		})
	}
}

// TestExecute_DryRun verifies --dry-run validates and prints the plan.
func TestExecute_DryRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"bare host", []string{"192.168.1.5", "-c", "play", "--dry-run"},
			[]string{"mode:     connect", "player:   192.168.1.5:13337", "commands: play"}},
		{"host:port", []string{"192.168.1.5:2000", "--dry-run"},
			[]string{"player:   192.168.1.5:2000"}},
		{"host port", []string{"192.168.1.5", "4000", "--dry-run"},
			[]string{"player:   192.168.1.5:4000"}},
		{"port flag", []string{"-p", "5000", "192.168.1.5", "--dry-run"},
			[]string{"player:   192.168.1.5:5000"}},
		{"qr", []string{"--qr", "10,0,0,7,13338", "--dry-run"},
			[]string{"player:   10.0.0.7:13338"}},
		{"listen", []string{"-l", "--dry-run"},
			[]string{"mode:     listen", "listen:   0.0.0.0:13337"}},
		{"raw", []string{"--raw", "10.0.0.7", "--dry-run"},
			[]string{"mode:     connect (raw)"}},
		{"tunnel", []string{"-T", "pi@gw:2222", "10.0.0.7", "--dry-run"},
			[]string{"tunnel:   pi@gw:2222"}},
		{"attempts", []string{"--connect-attempts", "3", "10.0.0.7", "--dry-run"},
			[]string{"attempts: 3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := capture(t)
			if err := Execute(context.Background(), tt.args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("plan missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no host", []string{"-c", "play", "--dry-run"}},
		{"port too low", []string{"10.0.0.7", "80", "--dry-run"}},
		{"bad qr", []string{"--qr", "1,2,3", "--dry-run"}},
		{"raw and commands", []string{"--raw", "-c", "play", "10.0.0.7", "--dry-run"}},
		{"listen and tui", []string{"-l", "--tui", "--dry-run"}},
		{"zero attempts", []string{"--connect-attempts", "0", "10.0.0.7", "--dry-run"}},
		{"log format", []string{"--log-format", "xml", "10.0.0.7", "--dry-run"}},
		{"too many args", []string{"a", "1", "b", "--dry-run"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture(t)
			if err := Execute(context.Background(), tt.args); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	capture(t)
	if err := Execute(context.Background(), []string{"--nonexistent-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

// TestExecute_ConfigFile verifies named servers and file defaults.
func TestExecute_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultConfigFileName)
	yaml := "connect_attempts: 4\nservers:\n  living-room: 192.168.1.20:14000\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _ := capture(t)
	err := Execute(context.Background(), []string{"--config", path, "living-room", "--dry-run"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, w := range []string{"player:   192.168.1.20:14000", "attempts: 4"} {
		if !strings.Contains(out.String(), w) {
			t.Errorf("plan missing %q:\n%s", w, out.String())
		}
	}
}

// TestExecute_Env verifies VIDERE_* variables sit below flags.
func TestExecute_Env(t *testing.T) {
	t.Setenv("VIDERE_PORT", "15000")
	t.Setenv("VIDERE_HOST", "10.1.1.1")

	out, _ := capture(t)
	if err := Execute(context.Background(), []string{"--dry-run"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "player:   10.1.1.1:15000") {
		t.Errorf("plan = %q", out.String())
	}

	out.Reset()
	if err := Execute(context.Background(), []string{"-p", "16000", "--dry-run"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "player:   10.1.1.1:16000") {
		t.Errorf("flag should win over env: %q", out.String())
	}
}

// TestExecute_SendsCommands runs the full connect path against a
// receiver and checks the stats report.
func TestExecute_SendsCommands(t *testing.T) {
	got := make(chan remote.Command, 4)
	r := receiver.New("127.0.0.1:0", nil, nil)
	r.Fallback = func(cmd remote.Command) { got <- cmd }
	if err := r.Listen(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go r.Serve(ctx) //nolint:errcheck

	port := r.Addr().(*net.TCPAddr).Port
	_, errOut := capture(t)
	err := Execute(ctx, []string{"-q", "--stats", "127.0.0.1:" + strconv.Itoa(port), "-c", "toggle"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	select {
	case c := <-got:
		if c != remote.PauseOrResume {
			t.Errorf("player got %s", c)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("command never arrived")
	}
	if !strings.Contains(errOut.String(), `"commands_sent": 1`) {
		t.Errorf("stats missing from stderr: %q", errOut.String())
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--config", "a.yaml", "host"}, "a.yaml"},
		{[]string{"host", "--config=b.yaml"}, "b.yaml"},
		{[]string{"--", "--config", "c.yaml"}, ""},
		{[]string{"host"}, ""},
	}
	for _, tt := range tests {
		if got := configPath(tt.args); got != tt.want {
			t.Errorf("configPath(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
