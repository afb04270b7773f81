package capability

import (
	"context"
	"errors"
	"fmt"
	"io"

	"videre/util"
)

// Pipe copies Stdin to the player byte for byte, for command streams
// produced by another program.
type Pipe struct{}

// Handle forwards Stdin until EOF or until the session drops.
func (p *Pipe) Handle(ctx context.Context, env *Env) error {
	buf, release := util.Borrow()
	defer release()

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := env.Stdin.Read(buf)
		if n > 0 {
			if err := env.Session.Send(buf[:n]); err != nil {
				return fmt.Errorf("pipe after %d bytes: %w", total, err)
			}
			total += int64(n)
		}
		if errors.Is(rerr, io.EOF) {
			env.Logger.Verbose("stdin closed after %d bytes", total)
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read stdin: %w", rerr)
		}
	}
}
