package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/benchfleet/cmd/benchfleet/handlers"
)

// Run returns the command driving a full benchmark run.
//
// The run launches the configured load generator detached on every instance,
// scrapes metrics for the configured duration, waits for every instance to
// finish, and prints an aggregate summary.
func Run() *cobra.Command {
	var (
		configPath  string
		resultsFile string
		logDir      string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured benchmark across the fleet",
		Long: `Run the configured benchmark across the fleet.

The benchmark command is launched detached on every instance and tracked
through tmux session probing. Metrics reports are scraped periodically and
aggregated into a summary table.

Examples:
  # Run using benchfleet.yaml in the current directory
  benchfleet run

  # Run with an explicit config, saving results and remote logs
  benchfleet run -c fleet.yaml --results results.json --logs ./logs`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Run(cmd.Context(), configPath, resultsFile, logDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "benchfleet.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&resultsFile, "results", "results.json", "Local path for the JSON results (empty to skip)")
	cmd.Flags().StringVar(&logDir, "logs", "", "Local directory for downloaded instance logs (empty to skip)")

	return cmd
}
