// Videre - a remote control for the Videre media player.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"videre/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "videre: %v\n", err)
		os.Exit(1)
	}
}
