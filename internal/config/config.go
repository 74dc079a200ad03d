package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the traffic generator configuration.
type Config struct {
	Domain    string   `yaml:"domain"`
	Token     string   `yaml:"token"`
	Namespace string   `yaml:"namespace"`
	Interval  Duration `yaml:"interval"`
	Pause     Duration `yaml:"pause"`
	MaxTokens int      `yaml:"max_tokens"`
	Once      bool     `yaml:"once"`

	// InsecureSkipVerify disables TLS certificate verification on every
	// outbound request. Verification is on unless this is set.
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
	RequestTimeout     Duration `yaml:"request_timeout"`

	Discovery DiscoveryConfig `yaml:"discovery"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DiscoveryConfig contains endpoint discovery configuration.
type DiscoveryConfig struct {
	Timeout Duration `yaml:"timeout"`

	// MaxFailures is the number of consecutive failed discovery calls
	// after which a continuous run gives up instead of looping inert.
	MaxFailures int `yaml:"max_failures"`
}

// APIConfig contains the status API server configuration. The server is
// on by default so the daemon is observable out of the box; set disabled
// to turn it off.
type APIConfig struct {
	Disabled bool   `yaml:"disabled"`
	Listen   string `yaml:"listen"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from file. An empty path yields a config with
// defaults only, so running without a settings file is fine.
func Load(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "serving-default"
	}
	if c.Interval.Duration == 0 {
		c.Interval = Seconds(60)
	}
	if c.Pause.Duration == 0 {
		c.Pause = Seconds(2)
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 50
	}
	if c.RequestTimeout.Duration == 0 {
		c.RequestTimeout = Seconds(30)
	}

	if c.Discovery.Timeout.Duration == 0 {
		c.Discovery.Timeout = Seconds(10)
	}
	if c.Discovery.MaxFailures == 0 {
		c.Discovery.MaxFailures = 5
	}

	if c.API.Listen == "" {
		c.API.Listen = ":8085"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// ApplyEnv fills credential and domain values from the environment when the
// settings file left them empty. The environment never overrides the file.
func (c *Config) ApplyEnv() {
	if c.Token == "" {
		c.Token = os.Getenv("CDP_TOKEN")
	}
	if c.Domain == "" {
		c.Domain = os.Getenv("CML_DOMAIN")
	}
}

// Validate validates the configuration and normalizes the domain.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required (set token in the config file or the CDP_TOKEN environment variable)")
	}
	if c.Domain == "" {
		return fmt.Errorf("domain is required (set domain in the config file or the CML_DOMAIN environment variable)")
	}
	c.Domain = NormalizeDomain(c.Domain)

	if c.Interval.Duration <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Pause.Duration < 0 {
		return fmt.Errorf("pause cannot be negative")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.Discovery.Timeout.Duration <= 0 {
		return fmt.Errorf("discovery timeout must be positive")
	}
	if c.Discovery.MaxFailures <= 0 {
		return fmt.Errorf("discovery max_failures must be positive")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// NormalizeDomain strips an http(s) scheme and any trailing slash so the
// value can be composed into request URLs.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimRight(domain, "/")
}
