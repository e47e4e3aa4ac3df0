package handlers

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/imamik/benchfleet/internal/ssh"
)

// Status probes every instance once and prints whether the background job
// identified by jobID is still running there.
func Status(ctx context.Context, configPath, jobID string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	instances := cfg.Fleet()
	manager := newManager(cfg)

	results, err := manager.Execute(ctx, instances, ssh.ProbeCommand)
	if err != nil {
		return err
	}

	job := ssh.Uniform("").WithBackground(jobID)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Instance", "Status"})
	for i, res := range results {
		t.AppendRow(table.Row{instances[i].String(), job.Status(res.Stdout).String()})
	}
	fmt.Println(t.Render())
	return nil
}
