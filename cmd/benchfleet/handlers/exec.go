package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/benchfleet/internal/ssh"
)

// ExecOptions are the command modifiers exposed by the exec command.
type ExecOptions struct {
	Background string
	WorkingDir string
	LogFile    string
}

// Exec runs one shell command on every instance and prints each instance's
// captured stdout.
func Exec(ctx context.Context, configPath, command string, opts ExecOptions) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	instances := cfg.Fleet()
	manager := newManager(cfg)

	results, err := manager.Execute(ctx, instances, buildCommand(command, opts))
	if err != nil {
		return err
	}

	for i, res := range results {
		fmt.Printf("--- %s ---\n", instances[i])
		if out := strings.TrimRight(res.Stdout, "\n"); out != "" {
			fmt.Println(out)
		}
	}
	return nil
}

// buildCommand applies the exec flags to the rendered command template.
func buildCommand(command string, opts ExecOptions) ssh.Command {
	cmd := indexedCommand(command)
	if opts.LogFile != "" {
		cmd = cmd.WithLogFile(opts.LogFile)
	}
	if opts.Background != "" {
		cmd = cmd.WithBackground(opts.Background)
	}
	if opts.WorkingDir != "" {
		cmd = cmd.WithDir(opts.WorkingDir)
	}
	return cmd
}
