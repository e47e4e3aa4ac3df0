package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/benchfleet/cmd/benchfleet/handlers"
)

// Exec returns the command running a one-shot shell command on every
// instance of the fleet.
func Exec() *cobra.Command {
	var (
		configPath string
		opts       handlers.ExecOptions
	)

	cmd := &cobra.Command{
		Use:   "exec <command>",
		Short: "Execute a shell command on every instance",
		Long: `Execute a shell command on every instance of the fleet.

The literal {index} in the command is replaced with each instance's ordinal.
With --background the command starts detached in a named tmux session and
exec returns immediately; use 'benchfleet status' to track it.

Examples:
  # Check kernel versions across the fleet
  benchfleet exec "uname -r"

  # Launch a long job detached and tagged
  benchfleet exec --background warmup-1 "./warmup --shard {index}"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Exec(cmd.Context(), configPath, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "benchfleet.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&opts.Background, "background", "", "Run detached in a tmux session with this id")
	cmd.Flags().StringVar(&opts.WorkingDir, "dir", "", "Remote working directory")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "Remote file capturing stdout and stderr")

	return cmd
}
