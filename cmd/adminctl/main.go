// Command adminctl is a terminal client for the admin gateway, covering the
// day-to-day operations: signing in, browsing the directory trees, and
// editing role grants.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"admin-gateway/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
