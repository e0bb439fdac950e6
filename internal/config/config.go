package config

import (
	"fmt"
	"os"
	"strconv"

	"MathUtils/internal/calculator"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Rounding string `yaml:"rounding"`
	Jobs     struct {
		File string `yaml:"file"`
	} `yaml:"jobs"`
	Schedule struct {
		Cron  string `yaml:"cron"`
		Watch bool   `yaml:"watch"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("MATHUTILS_ROUNDING"); v != "" {
		cfg.Rounding = v
	}
	if v := os.Getenv("MATHUTILS_JOBS"); v != "" {
		cfg.Jobs.File = v
	}
	if v := os.Getenv("MATHUTILS_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("MATHUTILS_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Schedule.Watch = b
		}
	}
	if v, ok := os.LookupEnv("SQLITE_PATH"); ok {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Rounding == "" {
		cfg.Rounding = string(calculator.RoundHalfUp)
	}
	if cfg.Jobs.File == "" {
		cfg.Jobs.File = "configs/jobs.yaml"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 */5 * * * *"
	}
	if _, set := os.LookupEnv("SQLITE_PATH"); !set && cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/mathutils.db"
	}

	return cfg, nil
}

// RoundingMode returns the parsed rounding mode.
func (c *Config) RoundingMode() (calculator.RoundingMode, error) {
	return calculator.ParseRoundingMode(c.Rounding)
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if _, err := c.RoundingMode(); err != nil {
		return fmt.Errorf("rounding: %w", err)
	}
	if c.Jobs.File == "" {
		return fmt.Errorf("jobs.file is required")
	}
	if c.Schedule.Cron == "" {
		return fmt.Errorf("schedule.cron is required")
	}
	return nil
}
