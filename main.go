package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"charm.land/lipgloss/v2"

	"tasnim.dev/lambda-logs/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd(nil)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		lipgloss.Fprintln(os.Stderr, cmd.FormatError(err))
		stop()
		os.Exit(1)
	}
}
