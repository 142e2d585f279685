package main

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"github.com/gabapcia/btcwatch/internal/handlers/cli"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// The logger starts before the configuration is loaded, so it reads its
	// two settings straight from the environment.
	level := cmp.Or(os.Getenv("BTCWATCH_LOG_LEVEL"), "info")
	format := cmp.Or(os.Getenv("BTCWATCH_LOG_FORMAT"), "json")
	if err := logger.Init(level, logger.WithEncoding(format)); err != nil {
		fmt.Fprintln(os.Stderr, "invalid log level:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	if err := cli.Run(ctx, bootstrap); err != nil {
		logger.Error(ctx, "btcwatch failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}
