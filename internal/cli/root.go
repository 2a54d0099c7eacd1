package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any
// subcommands.
var RootCmd = &cobra.Command{
	Use:     "hotspan",
	Short:   "Cycle-accurate latency telemetry for Go hot paths",
	Version: version,
	Long: `Hotspan measures the wall-clock duration of code regions with the CPU
timestamp counter, corrects for its own instrumentation overhead and
renders a statistical report. This tool exercises the library: it runs
demo or configured workloads and prints the resulting telemetry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(demoCmd)
	RootCmd.AddCommand(benchCmd)
	RootCmd.AddCommand(runCmd)
}
