package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so a developer's local config file
	// cannot leak into the test.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Collect.Timeout != 60*time.Second {
		t.Errorf("collect.timeout = %s, want 60s", cfg.Collect.Timeout)
	}
	if cfg.Collect.Workers != 1 {
		t.Errorf("collect.workers = %d, want 1", cfg.Collect.Workers)
	}
	if cfg.Thresholds.Warn != 75 || cfg.Thresholds.Crit != 90 {
		t.Errorf("thresholds = %.0f/%.0f, want 75/90", cfg.Thresholds.Warn, cfg.Thresholds.Crit)
	}
	if cfg.Thresholds.FlapCount != 2 {
		t.Errorf("thresholds.flap_count = %d, want 2", cfg.Thresholds.FlapCount)
	}
	if cfg.Render.Format != "text" {
		t.Errorf("render.format = %q, want text", cfg.Render.Format)
	}
	if cfg.Serve.Listen != ":9120" {
		t.Errorf("serve.listen = %q, want :9120", cfg.Serve.Listen)
	}
	if cfg.File != "" {
		t.Errorf("cfg.File = %q, want empty without a config file", cfg.File)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := `
device:
  host: 10.0.0.5
  username: ops
thresholds:
  warn: 60
  crit: 80
collect:
  workers: 4
  timeout: 30s
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Device.Host != "10.0.0.5" {
		t.Errorf("device.host = %q, want 10.0.0.5", cfg.Device.Host)
	}
	if cfg.Device.Username != "ops" {
		t.Errorf("device.username = %q, want ops", cfg.Device.Username)
	}
	if cfg.Thresholds.Warn != 60 || cfg.Thresholds.Crit != 80 {
		t.Errorf("thresholds = %.0f/%.0f, want 60/80", cfg.Thresholds.Warn, cfg.Thresholds.Crit)
	}
	if cfg.Collect.Workers != 4 {
		t.Errorf("collect.workers = %d, want 4", cfg.Collect.Workers)
	}
	if cfg.Collect.Timeout != 30*time.Second {
		t.Errorf("collect.timeout = %s, want 30s", cfg.Collect.Timeout)
	}
	if cfg.File != path {
		t.Errorf("cfg.File = %q, want %q", cfg.File, path)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EOSHC_DEVICE_HOST", "sw-lab-01")
	t.Setenv("EOSHC_THRESHOLDS_WARN", "50")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Device.Host != "sw-lab-01" {
		t.Errorf("device.host = %q, want sw-lab-01", cfg.Device.Host)
	}
	if cfg.Thresholds.Warn != 50 {
		t.Errorf("thresholds.warn = %.0f, want 50", cfg.Thresholds.Warn)
	}
}

func TestValidate_Rejections(t *testing.T) {
	base := func() *Config {
		t.Helper()
		t.Chdir(t.TempDir())
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"warn above crit", func(c *Config) { c.Thresholds.Warn = 95; c.Thresholds.Crit = 90 }},
		{"crit over 100", func(c *Config) { c.Thresholds.Crit = 150 }},
		{"zero workers", func(c *Config) { c.Collect.Workers = 0 }},
		{"bad render format", func(c *Config) { c.Render.Format = "xml" }},
		{"bad color mode", func(c *Config) { c.Render.Color = "sometimes" }},
		{"sub-second timeout", func(c *Config) { c.Collect.Timeout = 200 * time.Millisecond }},
		{"s3 endpoint without bucket", func(c *Config) { c.Transfer.S3.Endpoint = "minio.example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate accepted %s", tt.name)
			}
		})
	}
}

func TestValidate_AcceptsEqualBoundaries(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Thresholds.Warn = 0
	cfg.Thresholds.Crit = 100
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate rejected extreme but legal thresholds: %v", err)
	}
}
