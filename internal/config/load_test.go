package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benchfleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
ssh:
  username: ubuntu
  privateKeyFile: /home/ubuntu/.ssh/id_ed25519
instances:
  - name: validator-0
    host: 10.0.0.1
  - name: validator-1
    host: 10.0.0.2
    port: 2222
benchmark:
  command: "./node --id {index}"
  metricsCommand: "curl -s http://localhost:9184/metrics"
  duration: 5m
  scrapeInterval: 30s
`

func TestLoadFile_Valid(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "ubuntu", cfg.SSH.Username)
	assert.Equal(t, "/home/ubuntu/.ssh/id_ed25519", cfg.SSH.PrivateKeyFile)
	assert.Len(t, cfg.Instances, 2)
	assert.Equal(t, 2222, cfg.Instances[1].Port)
	assert.Equal(t, 5*time.Minute, cfg.Benchmark.Duration.Std())
	assert.Equal(t, 30*time.Second, cfg.Benchmark.ScrapeInterval.Std())
}

func TestLoadFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
ssh:
  username: root
  privateKeyFile: /root/.ssh/id_rsa
instances:
  - host: 10.0.0.1
benchmark:
  command: run-bench
  metricsCommand: "curl -s localhost:9184/metrics"
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, cfg.SSH.Timeout.Std())
	assert.Equal(t, DefaultRetries, cfg.SSH.Retries)
	assert.Equal(t, DefaultRetryDelay, cfg.SSH.RetryDelay.Std())
	assert.Equal(t, DefaultDuration, cfg.Benchmark.Duration.Std())
	assert.Equal(t, DefaultScrapeInterval, cfg.Benchmark.ScrapeInterval.Std())
	assert.Zero(t, cfg.SSH.PollTimeout, "poll timeout defaults to unbounded")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadFile_MalformedYAML(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "ssh: [broken"))
	assert.ErrorContains(t, err, "failed to unmarshal yaml")
}

func TestValidate_Errors(t *testing.T) {
	base := func() Config {
		return Config{
			SSH: SSHConfig{Username: "root", PrivateKeyFile: "/root/.ssh/id_rsa"},
			Instances: []InstanceConfig{
				{Name: "a", Host: "10.0.0.1"},
			},
			Benchmark: BenchmarkConfig{
				Command:        "run",
				MetricsCommand: "curl -s localhost:9184/metrics",
				Duration:       Duration(time.Minute),
				ScrapeInterval: Duration(time.Second),
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing username", func(c *Config) { c.SSH.Username = "" }, "ssh.username"},
		{"missing key", func(c *Config) { c.SSH.PrivateKeyFile = "" }, "ssh.privateKeyFile"},
		{"no instances", func(c *Config) { c.Instances = nil }, "at least one instance"},
		{"missing host", func(c *Config) { c.Instances[0].Host = "" }, "host is required"},
		{"bad port", func(c *Config) { c.Instances[0].Port = 70000 }, "out of range"},
		{
			"duplicate endpoint",
			func(c *Config) { c.Instances = append(c.Instances, InstanceConfig{Host: "10.0.0.1"}) },
			"duplicate endpoint",
		},
		{
			"duplicate name",
			func(c *Config) { c.Instances = append(c.Instances, InstanceConfig{Name: "a", Host: "10.0.0.2"}) },
			"duplicate name",
		},
		{
			"name collides with default",
			func(c *Config) {
				c.Instances = append(c.Instances,
					InstanceConfig{Host: "10.0.0.2"},
					InstanceConfig{Name: "instance-1", Host: "10.0.0.3"},
				)
			},
			"duplicate name",
		},
		{"missing command", func(c *Config) { c.Benchmark.Command = "" }, "benchmark.command"},
		{"missing metrics command", func(c *Config) { c.Benchmark.MetricsCommand = "" }, "benchmark.metricsCommand"},
		{"zero duration", func(c *Config) { c.Benchmark.Duration = 0 }, "duration must be positive"},
		{"zero interval", func(c *Config) { c.Benchmark.ScrapeInterval = 0 }, "scrapeInterval must be positive"},
		{
			"interval exceeds duration",
			func(c *Config) { c.Benchmark.ScrapeInterval = Duration(2 * time.Minute) },
			"exceeds benchmark.duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Fleet(t *testing.T) {
	cfg := Config{
		Instances: []InstanceConfig{
			{Name: "validator-0", Host: "10.0.0.1"},
			{Host: "10.0.0.2", Port: 2222},
		},
	}

	instances := cfg.Fleet()
	require.Len(t, instances, 2)

	assert.Equal(t, "validator-0", instances[0].Name)
	assert.Equal(t, 0, instances[0].Ordinal)
	assert.Equal(t, "10.0.0.1:22", instances[0].SSHAddress())

	assert.Equal(t, "instance-1", instances[1].Name, "unnamed instances get ordinal names")
	assert.Equal(t, 1, instances[1].Ordinal)
	assert.Equal(t, "10.0.0.2:2222", instances[1].SSHAddress())
}
