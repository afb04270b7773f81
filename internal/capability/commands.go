package capability

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"videre/internal/remote"
)

// Commands sends playback commands by name.  With Args set it sends
// those and returns; otherwise it reads one command per line from
// Stdin until EOF.  Blank lines and lines starting with # are skipped.
type Commands struct {
	Args []string
}

// Handle sends each command in order.  A name that does not parse is
// reported and skipped when reading Stdin, and fatal when given as an
// argument.  A send failure ends the run since the session is gone.
func (c *Commands) Handle(ctx context.Context, env *Env) error {
	if len(c.Args) > 0 {
		for _, arg := range c.Args {
			cmd, err := remote.ParseCommand(arg)
			if err != nil {
				return err
			}
			if err := send(ctx, env, cmd); err != nil {
				return err
			}
		}
		return nil
	}

	sc := bufio.NewScanner(env.Stdin)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cmd, err := remote.ParseCommand(text)
		if err != nil {
			env.Logger.Warn("line %d: %v", line, err)
			continue
		}
		if err := send(ctx, env, cmd); err != nil {
			return err
		}
	}
	return sc.Err()
}

func send(ctx context.Context, env *Env, cmd remote.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := env.Remote.Send(cmd); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	env.Logger.Verbose("sent %s", cmd)
	return nil
}
