package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeanpaul/learnbot/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNoAnswer) {
			fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("error: "+err.Error()))
		}
		stop()
		os.Exit(1)
	}
}
