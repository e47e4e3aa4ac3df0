package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/benchfleet/cmd/benchfleet/handlers"
)

// Status returns the command reporting a background job's state per
// instance.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Report a background job's status on every instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Status(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "benchfleet.yaml", "Path to configuration file")

	return cmd
}
