// Package config loads client configuration: YAML file first, then
// RLA_-prefixed environment overrides. A running client can hot-reload
// the file; the base URL and state directory are fixed at startup.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the rlactl runtime configuration.
type Config struct {
	// BaseURL is the audit service API root, e.g. http://localhost:8888/api.
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`

	// StateDir holds the persisted session and the activity journal.
	StateDir string `yaml:"state_dir" envconfig:"STATE_DIR"`

	// PollInterval is the dashboard refresh cadence.
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"POLL_INTERVAL"`

	// MetricsAddr serves Prometheus metrics when non-empty, e.g. :9090.
	MetricsAddr string `yaml:"metrics_addr" envconfig:"METRICS_ADDR"`

	// Journal enables the local activity journal.
	Journal bool `yaml:"journal" envconfig:"JOURNAL"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	stateDir := ".rlaclient"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".rlaclient")
	}
	return Config{
		BaseURL:      "http://localhost:8888/api",
		StateDir:     stateDir,
		PollInterval: 5 * time.Second,
		Journal:      true,
	}
}

// Load reads the file at path (when it exists), applies RLA_* environment
// overrides, and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No file is fine; defaults plus environment apply.
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process("rla", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the client assumes.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute URL", c.BaseURL)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	return nil
}
