// Package benchmark drives a full load-generation run across the fleet:
// reachability checks, parameter upload, detached launch, status tracking,
// periodic metrics scraping, and log retrieval.
package benchmark

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/imamik/benchfleet/internal/config"
	"github.com/imamik/benchfleet/internal/fleet"
	"github.com/imamik/benchfleet/internal/metrics"
	"github.com/imamik/benchfleet/internal/ssh"
	"github.com/imamik/benchfleet/internal/util/async"
	"github.com/imamik/benchfleet/internal/util/retry"
)

// reachabilityRetries bounds the backoff loop that waits for freshly
// provisioned instances to accept SSH connections.
const reachabilityRetries = 10

// Session is the subset of a connection the runner needs for file transfer.
type Session interface {
	Upload(ctx context.Context, path string, content []byte) error
	Download(ctx context.Context, path string) ([]byte, error)
	Close() error
}

// Fleet abstracts the connection manager so runs are testable without a
// live fleet.
type Fleet interface {
	Execute(ctx context.Context, instances []fleet.Instance, command ssh.Command) ([]ssh.Result, error)
	WaitForCommand(ctx context.Context, instances []fleet.Instance, command ssh.Command, desired ssh.CommandStatus) error
	Connect(ctx context.Context, instance fleet.Instance) (Session, error)
}

// Manager adapts ssh.ConnectionManager to the Fleet interface.
type Manager struct {
	ssh.ConnectionManager
}

// Connect narrows the concrete connection to the Session interface.
func (m Manager) Connect(ctx context.Context, instance fleet.Instance) (Session, error) {
	return m.ConnectionManager.Connect(ctx, instance)
}

// Runner executes one benchmark run against a fixed set of instances.
type Runner struct {
	fleet     Fleet
	instances []fleet.Instance
	params    config.BenchmarkConfig
	log       zerolog.Logger

	// test seams
	newJobID func() string
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner builds a runner over the given fleet abstraction.
func NewRunner(f Fleet, instances []fleet.Instance, params config.BenchmarkConfig, log zerolog.Logger) *Runner {
	return &Runner{
		fleet:     f,
		instances: instances,
		params:    params,
		log:       log,
		newJobID: func() string {
			// Short unique tag: tmux session names stay readable and the
			// status probe's substring match cannot collide across runs.
			return "bench-" + uuid.NewString()[:8]
		},
	}
}

// Run drives a benchmark to completion and returns the collected metrics.
// The launched command is expected to terminate on its own once its work is
// done; Run observes that through status probing, never by signaling.
func (r *Runner) Run(ctx context.Context) (*metrics.Collector, error) {
	jobID := r.newJobID()
	logger := r.log.With().Str("job", jobID).Logger()
	logger.Info().Int("instances", len(r.instances)).Msg("starting benchmark run")

	if err := r.waitReachable(ctx); err != nil {
		return nil, fmt.Errorf("fleet not reachable: %w", err)
	}

	if r.params.ParametersFile != "" {
		if err := r.uploadParameters(ctx, jobID); err != nil {
			return nil, fmt.Errorf("upload parameters: %w", err)
		}
		logger.Info().Str("path", r.params.ParametersFile).Msg("uploaded run parameters")
	}

	launch := r.launchCommand(jobID)
	logger.Info().Str("command", launch.Stringify(0)).Msg("launching load generators")
	if _, err := r.fleet.Execute(ctx, r.instances, launch); err != nil {
		return nil, fmt.Errorf("launch benchmark: %w", err)
	}

	if err := r.fleet.WaitForCommand(ctx, r.instances, launch, ssh.StatusRunning); err != nil {
		return nil, fmt.Errorf("wait for benchmark start: %w", err)
	}
	logger.Info().Msg("benchmark running on all instances")

	collector := metrics.NewCollector()
	if err := r.scrape(ctx, collector, logger); err != nil {
		return nil, err
	}

	if err := r.fleet.WaitForCommand(ctx, r.instances, launch, ssh.StatusTerminated); err != nil {
		return nil, fmt.Errorf("wait for benchmark end: %w", err)
	}
	logger.Info().Msg("benchmark terminated on all instances")

	return collector, nil
}

// launchCommand renders the configured command per instance and wraps it for
// detached execution.
func (r *Runner) launchCommand(jobID string) ssh.Command {
	cmd := ssh.NewCommand(func(i int) string {
		return strings.ReplaceAll(r.params.Command, "{index}", strconv.Itoa(i))
	}).WithBackground(jobID)
	if r.params.LogFile != "" {
		cmd = cmd.WithLogFile(r.params.LogFile)
	}
	if r.params.WorkingDir != "" {
		cmd = cmd.WithDir(r.params.WorkingDir)
	}
	return cmd
}

// waitReachable blocks until every instance accepts an authenticated
// connection. Fresh fleets routinely need a few attempts while they boot.
func (r *Runner) waitReachable(ctx context.Context) error {
	tasks := make([]async.Task, len(r.instances))
	for i, instance := range r.instances {
		instance := instance
		tasks[i] = async.Task{
			Name: instance.String(),
			Func: func(ctx context.Context) error {
				return retry.WithExponentialBackoff(ctx, func() error {
					conn, err := r.fleet.Connect(ctx, instance)
					if err != nil {
						return err
					}
					return conn.Close()
				},
					retry.WithMaxRetries(reachabilityRetries),
					retry.WithInitialDelay(2*time.Second),
					retry.WithMaxDelay(10*time.Second),
					retry.WithSleep(r.sleep),
				)
			},
		}
	}
	return async.RunParallel(ctx, tasks)
}

// runManifest is the parameters file uploaded to every instance before
// launch, for reproducibility of the run.
type runManifest struct {
	Job       string `yaml:"job"`
	Command   string `yaml:"command"`
	Duration  string `yaml:"duration"`
	Instances int    `yaml:"instances"`
}

func (r *Runner) uploadParameters(ctx context.Context, jobID string) error {
	manifest, err := yaml.Marshal(runManifest{
		Job:       jobID,
		Command:   r.params.Command,
		Duration:  r.params.Duration.Std().String(),
		Instances: len(r.instances),
	})
	if err != nil {
		return err
	}

	tasks := make([]async.Task, len(r.instances))
	for i, instance := range r.instances {
		instance := instance
		tasks[i] = async.Task{
			Name: instance.String(),
			Func: func(ctx context.Context) error {
				conn, err := r.fleet.Connect(ctx, instance)
				if err != nil {
					return err
				}
				defer func() { _ = conn.Close() }()
				return conn.Upload(ctx, r.params.ParametersFile, manifest)
			},
		}
	}
	return async.RunParallel(ctx, tasks)
}

// scrape polls every instance's metrics report for the configured duration.
// Scrapes are best-effort: a failed round is logged and skipped, the run
// itself keeps going.
func (r *Runner) scrape(ctx context.Context, collector *metrics.Collector, logger zerolog.Logger) error {
	probe := ssh.Uniform(r.params.MetricsCommand)
	interval := r.params.ScrapeInterval.Std()
	rounds := int(r.params.Duration.Std() / interval)

	for round := 0; round < rounds; round++ {
		if err := r.wait(ctx, interval); err != nil {
			return err
		}

		results, err := r.fleet.Execute(ctx, r.instances, probe)
		if err != nil {
			logger.Warn().Err(err).Int("round", round).Msg("scrape round failed")
			continue
		}
		for i, res := range results {
			if err := collector.Collect(r.instances[i].Name, res.Stdout); err != nil {
				logger.Warn().Err(err).Stringer("instance", r.instances[i]).Msg("discarding unparsable scrape")
			}
		}
	}
	return nil
}

// DownloadLogs fetches the remote log file from every instance, keyed by
// instance name. It returns nil when the run has no log file configured.
func (r *Runner) DownloadLogs(ctx context.Context) (map[string][]byte, error) {
	if r.params.LogFile == "" {
		return nil, nil
	}

	var mu sync.Mutex
	logs := make(map[string][]byte, len(r.instances))

	tasks := make([]async.Task, len(r.instances))
	for i, instance := range r.instances {
		instance := instance
		tasks[i] = async.Task{
			Name: instance.String(),
			Func: func(ctx context.Context) error {
				conn, err := r.fleet.Connect(ctx, instance)
				if err != nil {
					return err
				}
				defer func() { _ = conn.Close() }()

				content, err := conn.Download(ctx, r.params.LogFile)
				if err != nil {
					return err
				}
				mu.Lock()
				logs[instance.Name] = content
				mu.Unlock()
				return nil
			},
		}
	}
	if err := async.RunParallel(ctx, tasks); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *Runner) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
