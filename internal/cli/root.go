// Package cli implements the schedsim command line: replay scheduler
// scenarios, validate scenario files and single-step a machine.
package cli

import (
	"log/slog"

	"kestrel/internal/logging"

	"github.com/spf13/cobra"
)

var (
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for schedsim.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedsim",
		Short: "Replay round-robin scheduler scenarios",
		Long:  "schedsim runs the kestrel scheduler against a simulated single-core machine.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newStepCmd(),
		newVersionCmd(),
	)

	return root
}
