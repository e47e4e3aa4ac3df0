// Package config loads and validates the benchfleet configuration file.
//
// The file describes the SSH connection policy, the instance inventory, and
// the benchmark parameters. Discovery and provisioning of instances are out
// of scope: the inventory is declared, not computed.
package config

import (
	"fmt"
	"time"

	"github.com/imamik/benchfleet/internal/fleet"
)

// Defaults applied by LoadFile when the corresponding field is absent.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultRetries        = 5
	DefaultRetryDelay     = 5 * time.Second
	DefaultScrapeInterval = 15 * time.Second
	DefaultDuration       = 3 * time.Minute
)

// Config is the root of the benchfleet configuration file.
type Config struct {
	SSH       SSHConfig        `yaml:"ssh"`
	Instances []InstanceConfig `yaml:"instances"`
	Benchmark BenchmarkConfig  `yaml:"benchmark"`
}

// SSHConfig holds credentials and connection policy shared by every
// instance.
type SSHConfig struct {
	Username       string   `yaml:"username"`
	PrivateKeyFile string   `yaml:"privateKeyFile"`
	Timeout        Duration `yaml:"timeout"`
	Retries        int      `yaml:"retries"`
	RetryDelay     Duration `yaml:"retryDelay"`

	// PollTimeout bounds how long a run may wait for a background job to
	// change state. Zero waits forever.
	PollTimeout Duration `yaml:"pollTimeout"`
}

// InstanceConfig declares one remote machine of the fleet.
type InstanceConfig struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BenchmarkConfig holds the parameters of one benchmark run.
type BenchmarkConfig struct {
	// Command is the shell command launching the load generator. The
	// literal {index} is replaced with the instance ordinal, so one
	// template yields a distinct command per target.
	Command string `yaml:"command"`

	// WorkingDir, when set, is where the command executes on the remote.
	WorkingDir string `yaml:"workingDir"`

	// LogFile, when set, captures the command's stdout and stderr on the
	// remote; it is downloaded locally after the run.
	LogFile string `yaml:"logFile"`

	// MetricsCommand scrapes one node's metrics report, for example
	// `curl -s http://localhost:9184/metrics`. Its stdout must be in the
	// text exposition format.
	MetricsCommand string `yaml:"metricsCommand"`

	// ParametersFile, when set, is the remote path the rendered run
	// parameters are uploaded to before launch.
	ParametersFile string `yaml:"parametersFile"`

	Duration       Duration `yaml:"duration"`
	ScrapeInterval Duration `yaml:"scrapeInterval"`
}

// Validate checks the configuration for the errors a run would otherwise
// only hit mid-flight.
func (c *Config) Validate() error {
	if c.SSH.Username == "" {
		return fmt.Errorf("ssh.username is required")
	}
	if c.SSH.PrivateKeyFile == "" {
		return fmt.Errorf("ssh.privateKeyFile is required")
	}
	if len(c.Instances) == 0 {
		return fmt.Errorf("at least one instance is required")
	}

	seen := make(map[string]bool, len(c.Instances))
	names := make(map[string]bool, len(c.Instances))
	for i, inst := range c.Instances {
		if inst.Host == "" {
			return fmt.Errorf("instances[%d]: host is required", i)
		}
		if inst.Port < 0 || inst.Port > 65535 {
			return fmt.Errorf("instances[%d]: port %d out of range", i, inst.Port)
		}
		key := fmt.Sprintf("%s:%d", inst.Host, inst.Port)
		if seen[key] {
			return fmt.Errorf("instances[%d]: duplicate endpoint %s", i, key)
		}
		seen[key] = true

		// Names key metrics and downloaded logs, so duplicates would
		// silently overwrite each other. Check the effective name, the same
		// one Fleet assigns.
		name := inst.Name
		if name == "" {
			name = fmt.Sprintf("instance-%d", i)
		}
		if names[name] {
			return fmt.Errorf("instances[%d]: duplicate name %q", i, name)
		}
		names[name] = true
	}

	if c.Benchmark.Command == "" {
		return fmt.Errorf("benchmark.command is required")
	}
	if c.Benchmark.MetricsCommand == "" {
		return fmt.Errorf("benchmark.metricsCommand is required")
	}
	if c.Benchmark.Duration <= 0 {
		return fmt.Errorf("benchmark.duration must be positive")
	}
	if c.Benchmark.ScrapeInterval <= 0 {
		return fmt.Errorf("benchmark.scrapeInterval must be positive")
	}
	if c.Benchmark.ScrapeInterval > c.Benchmark.Duration {
		return fmt.Errorf("benchmark.scrapeInterval exceeds benchmark.duration")
	}

	return nil
}

// Fleet converts the declared inventory into instance values, assigning each
// its ordinal.
func (c *Config) Fleet() []fleet.Instance {
	instances := make([]fleet.Instance, len(c.Instances))
	for i, inst := range c.Instances {
		name := inst.Name
		if name == "" {
			name = fmt.Sprintf("instance-%d", i)
		}
		instances[i] = fleet.Instance{
			Name:    name,
			Host:    inst.Host,
			Port:    inst.Port,
			Ordinal: i,
		}
	}
	return instances
}
