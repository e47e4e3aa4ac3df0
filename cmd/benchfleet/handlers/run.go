package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/imamik/benchfleet/internal/benchmark"
)

// Run drives a full benchmark run: launch, track, scrape, summarize.
func Run(ctx context.Context, configPath, resultsFile, logDir string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	instances := cfg.Fleet()
	runner := benchmark.NewRunner(
		benchmark.Manager{ConnectionManager: newManager(cfg)},
		instances,
		cfg.Benchmark,
		log.Logger,
	)

	collector, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if resultsFile != "" {
		if err := collector.Save(resultsFile); err != nil {
			return err
		}
		log.Info().Str("path", resultsFile).Msg("results written")
	}

	if logDir != "" && cfg.Benchmark.LogFile != "" {
		if err := saveLogs(ctx, runner, logDir); err != nil {
			return err
		}
	}

	fmt.Println(collector.Summary(len(instances)))
	return nil
}

func saveLogs(ctx context.Context, runner *benchmark.Runner, logDir string) error {
	logs, err := runner.DownloadLogs(ctx)
	if err != nil {
		return fmt.Errorf("download logs: %w", err)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	for name, content := range logs {
		path := filepath.Join(logDir, name+".log")
		if err := os.WriteFile(path, content, 0o644); err != nil { //nolint:gosec // log artifact
			return err
		}
		log.Info().Str("path", path).Msg("instance log written")
	}
	return nil
}
