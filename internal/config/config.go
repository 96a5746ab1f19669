// Package config provides configuration management for the simulated
// brokerage back end.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

const (
	// defaultQuoteConcurrency is used when expiration.quote_concurrency is unset
	defaultQuoteConcurrency = 4
	// defaultSweepInterval is used when expiration.sweep_interval is unset
	defaultSweepInterval = "24h"
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Quotes      QuotesConfig      `yaml:"quotes"`
	Expiration  ExpirationConfig  `yaml:"expiration"`
	Storage     StorageConfig     `yaml:"storage"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// QuotesConfig defines where market quotes come from.
type QuotesConfig struct {
	Provider string `yaml:"provider"` // static | http
	// Static provider: fixture prices keyed by symbol
	Prices map[string]float64 `yaml:"prices"`
	// HTTP provider settings
	APIKey      string `yaml:"api_key"`
	APIEndpoint string `yaml:"api_endpoint"`
	// UseCircuitBreaker wraps the provider with a circuit breaker
	UseCircuitBreaker bool `yaml:"use_circuit_breaker"`
}

// ExpirationConfig tunes the expiration engine.
type ExpirationConfig struct {
	QuoteConcurrency int    `yaml:"quote_concurrency"`
	SweepInterval    string `yaml:"sweep_interval"`
}

// StorageConfig defines storage settings for account data.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// DashboardConfig defines the read-only status server settings.
type DashboardConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks that all configuration values are valid and consistent.
func (c *Config) Validate() error {
	switch c.Environment.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be one of debug|info|warn|error")
	}

	switch c.Quotes.Provider {
	case "static":
		if len(c.Quotes.Prices) == 0 {
			return fmt.Errorf("quotes.prices is required for the static provider")
		}
	case "http":
		if c.Quotes.APIKey == "" {
			return fmt.Errorf("quotes.api_key is required for the http provider")
		}
		if c.Quotes.APIEndpoint == "" {
			return fmt.Errorf("quotes.api_endpoint is required for the http provider")
		}
	default:
		return fmt.Errorf("quotes.provider must be 'static' or 'http'")
	}

	if c.Expiration.QuoteConcurrency < 0 {
		return fmt.Errorf("expiration.quote_concurrency must be >= 0")
	}
	if c.Expiration.SweepInterval != "" {
		if _, err := time.ParseDuration(c.Expiration.SweepInterval); err != nil {
			return fmt.Errorf("expiration.sweep_interval invalid: %w", err)
		}
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}

	if c.Dashboard.Enabled && (c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535) {
		return fmt.Errorf("dashboard.port must be in (0,65535] when the dashboard is enabled")
	}

	return nil
}

// GetQuoteConcurrency returns the configured quote prefetch limit,
// falling back to the default when unset.
func (c *Config) GetQuoteConcurrency() int {
	if c.Expiration.QuoteConcurrency == 0 {
		return defaultQuoteConcurrency
	}
	return c.Expiration.QuoteConcurrency
}

// GetSweepInterval returns the configured sweep interval duration.
func (c *Config) GetSweepInterval() time.Duration {
	interval := c.Expiration.SweepInterval
	if interval == "" {
		interval = defaultSweepInterval
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return 24 * time.Hour // default
	}
	return d
}
