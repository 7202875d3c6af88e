package main

import (
	"github.com/spf13/cobra"

	"gamesched/internal/ctl"
)

var (
	logLevel string // log verbosity level
	sockPath string // control socket of the running scheduler
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "gamesched",
	Short: "A gaming-optimized CPU scheduling policy",
	Long: `gamesched schedules designated game tasks ahead of everything else.

Tasks registered as render or other drain first, CPUs can be isolated so
only game tasks run there, and individual tasks can be pinned to a CPU.
Start the scheduler with "gamesched run", then drive it from another shell
with add / remove / isolate / pin / status.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log verbosity (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&sockPath, "socket", ctl.DefaultSocket, "control socket path")
}
