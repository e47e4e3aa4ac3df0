// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"strconv"
	"strings"

	"github.com/imamik/benchfleet/internal/config"
	"github.com/imamik/benchfleet/internal/ssh"
)

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile
)

// newManager maps the loaded configuration onto a connection manager.
func newManager(cfg *config.Config) ssh.ConnectionManager {
	return ssh.NewConnectionManager(cfg.SSH.Username, cfg.SSH.PrivateKeyFile).
		WithTimeout(cfg.SSH.Timeout.Std()).
		WithRetries(cfg.SSH.Retries).
		WithRetryDelay(cfg.SSH.RetryDelay.Std()).
		WithPollTimeout(cfg.SSH.PollTimeout.Std())
}

// indexedCommand builds a descriptor from a command template where the
// literal {index} stands for the instance ordinal.
func indexedCommand(template string) ssh.Command {
	return ssh.NewCommand(func(i int) string {
		return strings.ReplaceAll(template, "{index}", strconv.Itoa(i))
	})
}
