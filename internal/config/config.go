package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultConcurrency = 4
	maxConcurrency     = 32
)

// Config holds optional defaults loaded from ~/.config/lambda-logs/config.yaml.
type Config struct {
	DefaultProfile    string `yaml:"default_profile"`
	DefaultRegion     string `yaml:"default_region"`
	DeleteConcurrency int    `yaml:"delete_concurrency"`
	LogLevel          string `yaml:"log_level"`
	LogFormat         string `yaml:"log_format"`
	LogSource         bool   `yaml:"log_source"`
}

// Path returns the config file location, or "" if the home directory is unknown.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lambda-logs", "config.yaml")
}

// Load reads the config file. Returns zero-value Config if the file doesn't exist.
func Load() (*Config, error) {
	path := Path()
	if path == "" {
		return &Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields a zero-value Config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge applies CLI flag overrides. Flags take precedence over config defaults.
func (c *Config) Merge(profile, region string) (string, string) {
	p := c.DefaultProfile
	if profile != "" {
		p = profile
	}
	r := c.DefaultRegion
	if region != "" {
		r = region
	}
	return p, r
}

// Concurrency returns the delete fan-out width, clamped to [1, 32]. Defaults to 4.
func (c *Config) Concurrency() int {
	switch {
	case c.DeleteConcurrency <= 0:
		return defaultConcurrency
	case c.DeleteConcurrency > maxConcurrency:
		return maxConcurrency
	default:
		return c.DeleteConcurrency
	}
}

// Level returns the configured log level, "info" when unset.
func (c *Config) Level() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// Format returns the configured log format, "text" when unset.
func (c *Config) Format() string {
	if c.LogFormat == "" {
		return "text"
	}
	return c.LogFormat
}
