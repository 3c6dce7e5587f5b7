package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nhle/linkscan/internal/source"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if source.IsAuthError(err) {
		fmt.Fprintln(os.Stderr, "Authentication failed. Run `linkscan auth` (Gmail) or `linkscan credentials set imap-password` (IMAP).")
	}
	return 1
}
