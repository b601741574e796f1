package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when -c is not given.
const DefaultPath = "futurelink.yaml"

// Config represents the application configuration.
type Config struct {
	Filter  FilterConfig  `yaml:"filter"`
	Content ContentConfig `yaml:"content"`
	Server  ServerConfig  `yaml:"server"`
	Daemon  DaemonConfig  `yaml:"daemon"`
}

// FilterConfig configures the marker rewriting engine.
type FilterConfig struct {
	Syntaxes      []string `yaml:"syntaxes,omitempty"`       // bracket, legacy
	MaxIterations int      `yaml:"max_iterations,omitempty"` // markers visited per document
	Hold          []string `yaml:"hold,omitempty"`           // URL substrings left untouched
	Timezone      string   `yaml:"timezone,omitempty"`       // zone for go-live dates without one
}

// ContentConfig describes the content tree the publisher works on.
type ContentConfig struct {
	Source     string   `yaml:"source"`
	Output     string   `yaml:"output"`
	Eligible   []string `yaml:"eligible,omitempty"`   // globs; only matching pages are filtered
	Extensions []string `yaml:"extensions,omitempty"` // files rendered as pages, others are copied
	Clean      bool     `yaml:"clean"`                // empty output directory before publishing
}

// ServerConfig configures the render server.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// DaemonConfig configures scheduled re-publishing.
type DaemonConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Cron        string        `yaml:"cron,omitempty"` // overrides interval when set
	WatchConfig bool          `yaml:"watch_config"`
	Retry       RetryConfig   `yaml:"retry"`
}

// RetryBackoffMode selects how the delay between publish retries grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// RetryConfig controls retries of a failed scheduled publish.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff,omitempty"`
	Initial    time.Duration    `yaml:"initial,omitempty"`
	Max        time.Duration    `yaml:"max,omitempty"`
	MaxRetries int              `yaml:"max_retries"` // 0 disables retries
}

// Load reads, expands and validates the configuration file at configPath.
// Variables from .env and .env.local are available to ${VAR} expansion.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	// Defaults for an empty config cannot fail.
	_ = applyDefaults(&cfg)
	return &cfg
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Default()
	example.Filter.Hold = []string{"example.com"}
	example.Server.Metrics = true
	example.Daemon.WatchConfig = true
	example.Daemon.Retry.MaxRetries = 2

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
