package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Battery.Names) != 0 {
		t.Fatalf("unexpected default Names: %v", cfg.Battery.Names)
	}
	if cfg.Battery.Required {
		t.Fatal("Required should default to false")
	}
	if cfg.Poll.TimeoutSeconds != 60 {
		t.Fatalf("unexpected TimeoutSeconds: %d", cfg.Poll.TimeoutSeconds)
	}
	if cfg.Alerts.WarningLevel != 15 {
		t.Fatalf("unexpected WarningLevel: %d", cfg.Alerts.WarningLevel)
	}
	if cfg.Alerts.CriticalLevel != 5 {
		t.Fatalf("unexpected CriticalLevel: %d", cfg.Alerts.CriticalLevel)
	}
	if cfg.Alerts.DangerLevel != 2 {
		t.Fatalf("unexpected DangerLevel: %d", cfg.Alerts.DangerLevel)
	}
	if cfg.Alerts.AppName != "batwatch" {
		t.Fatalf("unexpected AppName: %q", cfg.Alerts.AppName)
	}
}

func TestLoad_OverridesAndKeepsDefaults(t *testing.T) {
	path := writeTempConfig(t, `
[battery]
names = ["BAT0", "BAT1"]
required = true

[alerts]
warning_level = 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Battery.Names) != 2 || cfg.Battery.Names[0] != "BAT0" {
		t.Fatalf("unexpected Names: %v", cfg.Battery.Names)
	}
	if !cfg.Battery.Required {
		t.Fatal("Required = false, want true")
	}
	if cfg.Alerts.WarningLevel != 25 {
		t.Fatalf("WarningLevel = %d, want 25", cfg.Alerts.WarningLevel)
	}
	// Untouched sections keep defaults.
	if cfg.Poll.TimeoutSeconds != 60 {
		t.Fatalf("TimeoutSeconds = %d, want default 60", cfg.Poll.TimeoutSeconds)
	}
	if cfg.Alerts.CriticalLevel != 5 {
		t.Fatalf("CriticalLevel = %d, want default 5", cfg.Alerts.CriticalLevel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}

func TestNormalizeAndValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "timeout out of range",
			mutate:  func(c *Config) { c.Poll.TimeoutSeconds = 0 },
			wantSub: "poll.timeout_seconds",
		},
		{
			name:    "warning over 100",
			mutate:  func(c *Config) { c.Alerts.WarningLevel = 120 },
			wantSub: "alerts.warning_level",
		},
		{
			name:    "critical above warning",
			mutate:  func(c *Config) { c.Alerts.CriticalLevel = 20 },
			wantSub: "alerts.critical_level",
		},
		{
			name:    "danger above critical",
			mutate:  func(c *Config) { c.Alerts.DangerLevel = 10 },
			wantSub: "alerts.danger_level",
		},
		{
			name:    "battery name is a path",
			mutate:  func(c *Config) { c.Battery.Names = []string{"../BAT0"} },
			wantSub: "battery.names[0]",
		},
		{
			name:    "empty battery name",
			mutate:  func(c *Config) { c.Battery.Names = []string{"  "} },
			wantSub: "battery.names[0]",
		},
		{
			name:    "empty app name",
			mutate:  func(c *Config) { c.Alerts.AppName = "" },
			wantSub: "alerts.app_name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			_, err := NormalizeAndValidate(cfg)
			if err == nil {
				t.Fatal("NormalizeAndValidate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error = %q, want contains %q", err.Error(), tc.wantSub)
			}
		})
	}
}

func TestNormalizeAndValidate_DisabledLevelsSkipOrdering(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alerts.CriticalLevel = 0
	cfg.Alerts.DangerLevel = 0

	if _, err := NormalizeAndValidate(cfg); err != nil {
		t.Fatalf("NormalizeAndValidate() error = %v", err)
	}
}
