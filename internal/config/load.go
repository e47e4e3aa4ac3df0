package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the configuration from a YAML file, applies
// defaults, and validates the result.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	// Set defaults
	if cfg.SSH.Timeout == 0 {
		cfg.SSH.Timeout = Duration(DefaultTimeout)
	}
	if cfg.SSH.Retries == 0 {
		cfg.SSH.Retries = DefaultRetries
	}
	if cfg.SSH.RetryDelay == 0 {
		cfg.SSH.RetryDelay = Duration(DefaultRetryDelay)
	}
	if cfg.Benchmark.ScrapeInterval == 0 {
		cfg.Benchmark.ScrapeInterval = Duration(DefaultScrapeInterval)
	}
	if cfg.Benchmark.Duration == 0 {
		cfg.Benchmark.Duration = Duration(DefaultDuration)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
