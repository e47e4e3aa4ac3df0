package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/benchfleet/cmd/benchfleet/handlers"
)

// Upload returns the command pushing a local file to every instance.
func Upload() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "upload <local-path> <remote-path>",
		Short: "Upload a file to every instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Upload(cmd.Context(), configPath, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "benchfleet.yaml", "Path to configuration file")

	return cmd
}

// Download returns the command pulling a remote file from every instance.
func Download() *cobra.Command {
	var (
		configPath string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "download <remote-path>",
		Short: "Download a file from every instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Download(cmd.Context(), configPath, args[0], outDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "benchfleet.yaml", "Path to configuration file")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Local directory for the downloaded files")

	return cmd
}
