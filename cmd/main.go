package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/desertthunder/spotpin/internal/ui"
)

func main() {
	if err := shared.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	runner := NewRunner(RunnerOpts{})
	err := runner.App().Run(ctx, os.Args)
	stop()

	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled.")
		} else {
			runner.logger.Error("command failed", "kind", shared.ErrorKind(err), "error", err)
		}
		os.Exit(1)
	}
}
