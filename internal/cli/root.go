package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "annoreport",
	Short: "Daily annotation progress reports for CVAT projects",
	Long:  "annoreport pulls task and label data from a CVAT server, aggregates per-task annotation stats,\ndiffs them against the last working day's snapshot, and emails a summary report.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "annoreport.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(tallyCmd)
	rootCmd.AddCommand(historyCmd)
}
