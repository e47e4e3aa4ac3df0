package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/imamik/benchfleet/internal/fleet"
	"github.com/imamik/benchfleet/internal/ssh"
	"github.com/imamik/benchfleet/internal/util/async"
)

// Upload copies a local file to the same remote path on every instance.
func Upload(ctx context.Context, configPath, localPath, remotePath string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}

	manager := newManager(cfg)
	tasks := make([]async.Task, 0, len(cfg.Instances))
	for _, instance := range cfg.Fleet() {
		tasks = append(tasks, async.Task{
			Name: instance.String(),
			Func: func(ctx context.Context) error {
				return withConnection(ctx, manager, instance, func(conn *ssh.Connection) error {
					return conn.Upload(ctx, remotePath, content)
				})
			},
		})
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		return err
	}
	log.Info().Str("path", remotePath).Int("instances", len(cfg.Instances)).Msg("upload complete")
	return nil
}

// Download pulls a remote file from every instance into outDir, one file per
// instance named <instance>-<basename>.
func Download(ctx context.Context, configPath, remotePath, outDir string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	manager := newManager(cfg)
	tasks := make([]async.Task, 0, len(cfg.Instances))
	for _, instance := range cfg.Fleet() {
		tasks = append(tasks, async.Task{
			Name: instance.String(),
			Func: func(ctx context.Context) error {
				return withConnection(ctx, manager, instance, func(conn *ssh.Connection) error {
					content, err := conn.Download(ctx, remotePath)
					if err != nil {
						return err
					}
					local := filepath.Join(outDir, instance.String()+"-"+filepath.Base(remotePath))
					return os.WriteFile(local, content, 0o644) //nolint:gosec // fetched artifact
				})
			},
		})
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		return err
	}
	log.Info().Str("path", remotePath).Str("out", outDir).Msg("download complete")
	return nil
}

// withConnection opens a connection for one transfer and always closes it.
func withConnection(ctx context.Context, manager ssh.ConnectionManager, instance fleet.Instance, fn func(*ssh.Connection) error) error {
	conn, err := manager.Connect(ctx, instance)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(conn)
}
