package cli

import (
	"context"
	"os"

	"github.com/gabapcia/btcwatch/internal/blockproc"

	"github.com/urfave/cli/v3"
)

// Bootstrap builds a ready-to-start block monitor from the process
// configuration. The returned release function frees the resources the
// monitor depends on (sink connections, telemetry) and must be called once
// the monitor is no longer used.
type Bootstrap func(ctx context.Context) (bp blockproc.Service, release func(), err error)

// Run initializes and executes the btcwatch CLI application.
//
// It registers all available commands, including:
//
//   - `start`: Runs the block monitor until interrupted.
//   - `scan`: Processes a single block and exits.
//   - `decode`: Derives the address locked by an output script.
//
// The monitor is only built for the commands that need it, so `decode`
// works without any node configuration.
func Run(ctx context.Context, bootstrap Bootstrap) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "btcwatch",
		Description:           "Watches a Bitcoin node for transactions touching a list of addresses.",
		Usage:                 "btcwatch [command] [flags]",
		Commands: []*cli.Command{
			startMonitorCommand(bootstrap),
			scanBlockCommand(bootstrap),
			decodeScriptCommand(),
		},
	}

	return app.Run(ctx, os.Args)
}
