package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/rlactl.yaml")
	if err != nil {
		t.Fatalf("expected defaults for missing file, got: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8888/api" {
		t.Errorf("base_url = %q", cfg.BaseURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("poll_interval = %s", cfg.PollInterval)
	}
	if !cfg.Journal {
		t.Error("journal should default on")
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rlactl.yaml")
	content := `
base_url: https://rla.example.org/api
state_dir: /var/lib/rlaclient
poll_interval: 10s
metrics_addr: ":9090"
journal: false
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://rla.example.org/api" {
		t.Errorf("base_url = %q", cfg.BaseURL)
	}
	if cfg.StateDir != "/var/lib/rlaclient" {
		t.Errorf("state_dir = %q", cfg.StateDir)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("poll_interval = %s", cfg.PollInterval)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("metrics_addr = %q", cfg.MetricsAddr)
	}
	if cfg.Journal {
		t.Error("journal should be off")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rlactl.yaml")
	if err := os.WriteFile(path, []byte("base_url: https://file.example.org/api\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RLA_BASE_URL", "https://env.example.org/api")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://env.example.org/api" {
		t.Errorf("base_url = %q, want the environment to win", cfg.BaseURL)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rlactl.yaml")
	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "not-a-url"
	if err := cfg.Validate(); err == nil {
		t.Error("relative base_url accepted")
	}

	cfg = Default()
	cfg.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero poll_interval accepted")
	}

	cfg = Default()
	cfg.StateDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty state_dir accepted")
	}
}
