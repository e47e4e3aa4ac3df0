// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the benchfleet CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchfleet",
		Short: "Orchestrate benchmark commands across a fleet over SSH",
	}

	cmd.AddCommand(Run())
	cmd.AddCommand(Exec())
	cmd.AddCommand(Status())
	cmd.AddCommand(Upload())
	cmd.AddCommand(Download())
	cmd.AddCommand(Version())

	return cmd
}
