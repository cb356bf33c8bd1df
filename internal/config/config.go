// Package config loads pipeline configuration from environment variables
// (prefix MORTREND) with an optional YAML overlay.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete pipeline configuration.
type Config struct {
	Input   InputConfig   `yaml:"input" envconfig:"INPUT"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Horizon HorizonConfig `yaml:"horizon" envconfig:"HORIZON"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// InputConfig locates the source workbook and scopes the categories kept
// during reshaping. The allowed-category filter is a business rule of the
// published analysis: rows outside the set are dropped silently.
type InputConfig struct {
	File              string   `yaml:"file" envconfig:"FILE"`
	Sheet             string   `yaml:"sheet" envconfig:"SHEET"`
	AllowedCategories []string `yaml:"allowed_categories" envconfig:"ALLOWED_CATEGORIES" default:"overall,Large Metro,Small/Medium Metro,Rural"`
}

// OutputConfig controls where derived tables and charts are written.
type OutputConfig struct {
	Dir       string `yaml:"dir" envconfig:"DIR" default:"out"`
	BOMPrefix bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX" default:"false"`
}

// HorizonConfig is the contiguous future year range to forecast.
type HorizonConfig struct {
	Start int `yaml:"start" envconfig:"START" default:"2023"`
	End   int `yaml:"end" envconfig:"END" default:"2028"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text"`
}

// Load builds the configuration: defaults and environment first, then the
// YAML file overlay when path is non-empty.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MORTREND", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Horizon.Start <= 0 || c.Horizon.End < c.Horizon.Start {
		return fmt.Errorf("invalid horizon: start=%d end=%d", c.Horizon.Start, c.Horizon.End)
	}
	if len(c.Input.AllowedCategories) == 0 {
		return fmt.Errorf("allowed categories must not be empty")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}
