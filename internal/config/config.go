// Package config provides configuration for the marathon pipeline.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoEnabledSources   = errors.New("at least one source must be enabled")
	ErrInvalidMaxAttempts = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidRetryDelay  = errors.New("retry.delay_ms must be non-negative")
	ErrInvalidTimeout     = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingDataDir     = errors.New("output.data_dir is required")
	ErrInvalidRunHour     = errors.New("schedule.hour_utc must be between 0 and 23")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config is the complete pipeline configuration.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Retry    RetryConfig    `yaml:"retry"`
	Output   OutputConfig   `yaml:"output"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SourcesConfig toggles and targets the individual collectors.
type SourcesConfig struct {
	GoRunning SourceConfig `yaml:"gorunning"`
	Aims      SourceConfig `yaml:"aims"`
}

// SourceConfig configures one collector.
type SourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// RetryConfig defines the transport retry policy.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	DelayMs     int `yaml:"delay_ms"`
	TimeoutSec  int `yaml:"timeout_sec"`
}

// OutputConfig defines where artifacts are written.
type OutputConfig struct {
	DataDir     string `yaml:"data_dir"`
	PrettyPrint bool   `yaml:"pretty_print"`
}

// ScheduleConfig defines the fixed daily run time. The published
// next-scheduled-run timestamp is derived from it.
type ScheduleConfig struct {
	// HourUTC is the daily wall-clock run hour in UTC.
	// 21 corresponds to 06:00 KST the following day.
	HourUTC int `yaml:"hour_utc"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			GoRunning: SourceConfig{Enabled: true, URL: "https://gorunning.kr/races"},
			Aims:      SourceConfig{Enabled: true, URL: "https://aims-worldrunning.org/events.ics"},
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			DelayMs:     1000,
			TimeoutSec:  30,
		},
		Output: OutputConfig{
			DataDir:     "public/data",
			PrettyPrint: true,
		},
		Schedule: ScheduleConfig{HourUTC: 21},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file layered over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if !c.Sources.GoRunning.Enabled && !c.Sources.Aims.Enabled {
		return ErrNoEnabledSources
	}
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.Retry.DelayMs < 0 {
		return ErrInvalidRetryDelay
	}
	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.Output.DataDir == "" {
		return ErrMissingDataDir
	}
	if c.Schedule.HourUTC < 0 || c.Schedule.HourUTC > 23 {
		return ErrInvalidRunHour
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}
