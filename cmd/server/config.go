/*
config.go - Server configuration

PURPOSE:
  Loads server configuration from an optional YAML file, with flag
  overrides applied in main.go. Missing file means defaults.

EXAMPLE CONFIG:
  port: 8080
  db_path: staffing.db
  scheduler:
    enabled: true
    interval: 1h
*/
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	Port   int    `yaml:"port"`
	DBPath string `yaml:"db_path"`

	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// SchedulerConfig controls the auto-complete sweeper.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Port:   8080,
		DBPath: "staffing.db",
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Interval: 1 * time.Hour,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval < time.Minute {
		return fmt.Errorf("scheduler interval %v below 1m", c.Scheduler.Interval)
	}
	return nil
}
