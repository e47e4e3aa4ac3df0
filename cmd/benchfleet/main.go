// Package main is the entry point for the benchfleet CLI.
//
// benchfleet coordinates shell commands across a fleet of remote machines
// over SSH. It is built for distributed benchmark runs: launching load
// generators detached on every instance, tracking them through tmux session
// probing, scraping their metrics reports, and summarizing the results.
//
// Commands: run, exec, status, upload, download, version.
//
// For detailed usage information, run:
//
//	benchfleet --help
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/imamik/benchfleet/cmd/benchfleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
