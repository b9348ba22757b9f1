// Package config handles configuration loading and validation for petpix.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/petpix/internal/core/label"
)

// Config holds the application configuration.
type Config struct {
	// APIBase is the root URL of the image service, including any stage
	// prefix (https://abc.execute-api.us-east-1.amazonaws.com/prod).
	APIBase      string `yaml:"api_base"`
	DefaultLabel string `yaml:"default_label"`
	UserAgent    string `yaml:"user_agent"`
}

// Overrides are values supplied by flags or environment variables. They take
// precedence over the config file when non-empty.
type Overrides struct {
	APIBase      string
	DefaultLabel string
}

// DefaultConfig returns a Config with sensible defaults. APIBase has no
// default and must be configured.
func DefaultConfig() Config {
	return Config{
		DefaultLabel: string(label.Cat),
		UserAgent:    "petpix",
	}
}

// Load reads configuration from the given path, applies overrides and
// validates the result. If configPath is empty or doesn't exist, defaults
// are used.
func Load(configPath string, overrides Overrides) (*Config, error) {
	cfg, err := Read(configPath, overrides)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation. It is used by commands that report on
// an invalid configuration instead of refusing to start.
func Read(configPath string, overrides Overrides) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if overrides.APIBase != "" {
		cfg.APIBase = overrides.APIBase
	}
	if overrides.DefaultLabel != "" {
		cfg.DefaultLabel = overrides.DefaultLabel
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	c.APIBase = strings.TrimSpace(c.APIBase)
	if c.DefaultLabel == "" {
		c.DefaultLabel = defaults.DefaultLabel
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
}

// Label returns the parsed default label.
func (c *Config) Label() label.Label {
	l, err := label.Parse(c.DefaultLabel)
	if err != nil {
		return label.Cat
	}
	return l
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("api_base cannot be empty (set it in the config file or with --api-base / PETPIX_API_BASE)")
	}

	if err := serviceURL(c.APIBase); err != nil {
		return fmt.Errorf("api_base: %w", err)
	}

	if _, err := label.Parse(c.DefaultLabel); err != nil {
		return fmt.Errorf("default_label: %w", err)
	}

	return nil
}

// serviceURL validates that s is an absolute http(s) URL.
func serviceURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
