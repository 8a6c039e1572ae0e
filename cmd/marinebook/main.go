package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/marinebook/internal/adapters/driving/cli"
	"github.com/custodia-labs/marinebook/internal/logger"
)

// Version information, set during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	app, err := bootstrap(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer app.close()

	// Errors are printed by the cli package.
	if err := cli.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func init() {
	if os.Getenv("MARINEBOOK_DEBUG") != "" {
		logger.SetVerbose(true)
	}
}
