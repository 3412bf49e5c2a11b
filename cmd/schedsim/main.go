// schedsim replays round-robin scheduler scenarios on a simulated machine.
package main

import (
	"context"
	"os"
	"os/signal"

	"kestrel/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
