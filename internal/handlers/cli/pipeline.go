package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/btcwatch/internal/pkg/logger"

	"github.com/urfave/cli/v3"
)

// startMonitorCommand returns a CLI command that starts the block monitor.
//
// Usage example:
//
//	btcwatch start
//
// The process runs until it receives an interrupt (SIGINT or SIGTERM).
func startMonitorCommand(bootstrap Bootstrap) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts polling the node and reporting activity of watched addresses.",
		Usage:       "Runs the block monitor from the chain tip onwards. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			bp, release, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer release()

			if err := bp.Start(ctx); err != nil {
				return err
			}
			defer bp.Close()

			select {
			case <-quit:
			case <-ctx.Done():
			}

			status := bp.Status()
			logger.Info(ctx, "shutting down",
				"block.height", status.LastProcessedHeight,
				"watchlist.size", status.WatchedCount,
			)

			return nil
		},
	}
}

// scanBlockCommand returns a CLI command that runs a single block through
// detection and notification, without starting the poll loop.
//
// Usage example:
//
//	btcwatch scan --height 840000
func scanBlockCommand(bootstrap Bootstrap) *cli.Command {
	return &cli.Command{
		Name:        "scan",
		Description: "Processes one block against the watch-list and exits.",
		Usage:       "Scans the block at the given height. Useful to replay a block after a failure.",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "height",
				Usage:    "Height of the block to scan",
				Required: true,
				Validator: func(h int64) error {
					if h < 0 {
						return cli.Exit("height must not be negative", 1)
					}
					return nil
				},
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			bp, release, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer release()

			return bp.ProcessBlock(ctx, c.Int64("height"))
		},
	}
}
