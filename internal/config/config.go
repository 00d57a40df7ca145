package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	minPollTimeoutSeconds = 1
	maxPollTimeoutSeconds = 3600
	minAlertLevel         = 0
	maxAlertLevel         = 100
)

type Config struct {
	Battery BatteryConfig `toml:"battery"`
	Poll    PollConfig    `toml:"poll"`
	Alerts  AlertsConfig  `toml:"alerts"`
}

type BatteryConfig struct {
	// Names pins the aggregate to specific batteries; empty means
	// auto-discover everything under the power-supply tree.
	Names    []string `toml:"names"`
	Required bool     `toml:"required"`
}

type PollConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type AlertsConfig struct {
	AppName       string `toml:"app_name"`
	WarningLevel  int    `toml:"warning_level"`
	CriticalLevel int    `toml:"critical_level"`
	DangerLevel   int    `toml:"danger_level"`
	NotifyFull    bool   `toml:"notify_full"`

	WarningMessage  string `toml:"warning_message"`
	CriticalMessage string `toml:"critical_message"`
	FullMessage     string `toml:"full_message"`

	// DangerCommand runs via the shell when the danger level is reached.
	DangerCommand string `toml:"danger_command"`
}

func DefaultConfig() *Config {
	return &Config{
		Battery: BatteryConfig{
			Required: false,
		},
		Poll: PollConfig{
			TimeoutSeconds: 60,
		},
		Alerts: AlertsConfig{
			AppName:         "batwatch",
			WarningLevel:    15,
			CriticalLevel:   5,
			DangerLevel:     2,
			NotifyFull:      false,
			WarningMessage:  "Battery is low",
			CriticalMessage: "Battery is critically low",
			FullMessage:     "Battery is full",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return NormalizeAndValidate(cfg)
}

func NormalizeAndValidate(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	sanitized := *cfg

	for i, name := range sanitized.Battery.Names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, fmt.Errorf("battery.names[%d] must not be empty", i)
		}
		if strings.ContainsRune(trimmed, '/') {
			return nil, fmt.Errorf("battery.names[%d] must be a device name, not a path, got %q", i, name)
		}
		sanitized.Battery.Names[i] = trimmed
	}

	if err := validateRange("poll.timeout_seconds", sanitized.Poll.TimeoutSeconds, minPollTimeoutSeconds, maxPollTimeoutSeconds); err != nil {
		return nil, err
	}
	if err := validateRange("alerts.warning_level", sanitized.Alerts.WarningLevel, minAlertLevel, maxAlertLevel); err != nil {
		return nil, err
	}
	if err := validateRange("alerts.critical_level", sanitized.Alerts.CriticalLevel, minAlertLevel, maxAlertLevel); err != nil {
		return nil, err
	}
	if err := validateRange("alerts.danger_level", sanitized.Alerts.DangerLevel, minAlertLevel, maxAlertLevel); err != nil {
		return nil, err
	}

	// Thresholds must not invert; a disabled (zero) level is exempt.
	if w, c := sanitized.Alerts.WarningLevel, sanitized.Alerts.CriticalLevel; w > 0 && c > 0 && c >= w {
		return nil, fmt.Errorf("alerts.critical_level (%d) must be below alerts.warning_level (%d)", c, w)
	}
	if c, d := sanitized.Alerts.CriticalLevel, sanitized.Alerts.DangerLevel; c > 0 && d > 0 && d >= c {
		return nil, fmt.Errorf("alerts.danger_level (%d) must be below alerts.critical_level (%d)", d, c)
	}

	if strings.TrimSpace(sanitized.Alerts.AppName) == "" {
		return nil, fmt.Errorf("alerts.app_name must not be empty")
	}

	return &sanitized, nil
}

func validateRange(name string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}

	return nil
}
