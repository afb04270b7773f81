package tunnel

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"

	verr "videre/internal/errors"
)

// Prompter reads a secret, such as a password or key passphrase, after
// showing label to the user.
type Prompter func(label string) ([]byte, error)

// TerminalPrompt shows label on stderr and reads a line from stdin
// with echo disabled.
func TerminalPrompt(label string) ([]byte, error) {
	fmt.Fprint(os.Stderr, label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return secret, err
}

// fallbackKeys are tried from ~/.ssh when no credential was configured.
var fallbackKeys = []string{"id_ed25519", "id_rsa", "id_ecdsa"}

// keyring collects the jump-host credentials for one login.
type keyring struct {
	prompt  Prompter
	methods []ssh.AuthMethod
}

func (k *keyring) add(m ssh.AuthMethod) { k.methods = append(k.methods, m) }

// BuildAuthMethods returns the login methods for the jump host. An
// explicit key comes first, then the agent, then a password. With
// none of those configured the agent and the usual key files are
// tried, and finding nothing at all is reported as ErrAuthFailed.
func BuildAuthMethods(cfg *SSHConfig) ([]ssh.AuthMethod, error) {
	k := &keyring{prompt: cfg.Prompt}
	if k.prompt == nil {
		k.prompt = TerminalPrompt
	}

	if cfg.KeyPath != "" {
		signer, err := k.loadKey(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", cfg.KeyPath, err)
		}
		k.add(ssh.PublicKeys(signer))
	}
	if cfg.UseAgent {
		m, err := dialAgent()
		if err != nil {
			return nil, fmt.Errorf("ssh-agent: %w", err)
		}
		k.add(m)
	}
	if cfg.PromptPass {
		pass, err := k.prompt(fmt.Sprintf("Password for %s@%s: ", cfg.User, cfg.Host))
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		k.add(ssh.Password(string(pass)))
	}

	if len(k.methods) == 0 {
		k.discover()
	}
	if len(k.methods) == 0 {
		return nil, fmt.Errorf("%w: no credentials for the jump host, pass --ssh-key, --ssh-agent or --ssh-password",
			verr.ErrAuthFailed)
	}
	return k.methods, nil
}

// discover picks up whatever the agent and ~/.ssh offer. Keys that
// fail to load are skipped.
func (k *keyring) discover() {
	if m, err := dialAgent(); err == nil {
		k.add(m)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	for _, name := range fallbackKeys {
		path := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if signer, err := k.loadKey(path); err == nil {
			k.add(ssh.PublicKeys(signer))
		}
	}
}

// loadKey parses a private key, asking for the passphrase when the key
// is encrypted.
func (k *keyring) loadKey(path string) (ssh.Signer, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(pem)
	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return signer, err
	}

	pass, err := k.prompt(fmt.Sprintf("Passphrase for %s: ", path))
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, pass)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return signer, nil
}

func dialAgent() (ssh.AuthMethod, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, errors.New("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, err
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), nil
}

// hostKeyCallback checks the jump host against known_hosts, or accepts
// any key when strict checking is off.
func hostKeyCallback(cfg *SSHConfig) (ssh.HostKeyCallback, error) {
	if !cfg.StrictHostKey {
		//nolint:gosec // strict checking disabled on the command line
		return ssh.InsecureIgnoreHostKey(), nil
	}

	path := cfg.KnownHosts
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("known_hosts %s: %w", path, err)
	}
	return cb, nil
}
