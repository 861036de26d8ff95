// Package main is the companion command line: catalog browsing, favorites,
// user-authored records, rosters, the storage grid, the trainer profile, and
// data export.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdout, os.Stderr)
	if err := c.execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
