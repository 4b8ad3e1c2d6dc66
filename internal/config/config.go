// Package config loads pmc settings from .pmc/config.yaml with PMC_*
// environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the .pmc directory
const FileName = "config.yaml"

// Provider names
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds every pmc setting
type Config struct {
	// Endpoint is the chat endpoint the assistant posts to.
	// Empty means call the provider in-process (or answer offline when no
	// API key is available).
	Endpoint string `yaml:"endpoint"`

	// Provider selects the LLM backend for the endpoint and in-process calls
	// Default: "openai"
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model
	Model string `yaml:"model"`

	// ListenAddr is where `pmc serve` listens
	// Default: "127.0.0.1:8787"
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is one of debug, info, warn, error
	// Default: "warn"
	LogLevel string `yaml:"log_level"`

	// Circuit breaker in front of the provider
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`

	// API keys are only read from the environment, never from the file
	OpenAIKey    string `yaml:"-"`
	AnthropicKey string `yaml:"-"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Provider:         ProviderOpenAI,
		ListenAddr:       "127.0.0.1:8787",
		LogLevel:         "warn",
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// Load reads <dir>/config.yaml if present, then applies environment overrides
// and validates the result
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables:
//   - PMC_ENDPOINT, PMC_PROVIDER, PMC_MODEL, PMC_LISTEN_ADDR, PMC_LOG_LEVEL
//   - PMC_FAILURE_THRESHOLD, PMC_SUCCESS_THRESHOLD, PMC_OPEN_TIMEOUT
//   - OPENAI_API_KEY, ANTHROPIC_API_KEY
func (c *Config) applyEnv() error {
	for key, dest := range map[string]*string{
		"PMC_ENDPOINT":      &c.Endpoint,
		"PMC_PROVIDER":      &c.Provider,
		"PMC_MODEL":         &c.Model,
		"PMC_LISTEN_ADDR":   &c.ListenAddr,
		"PMC_LOG_LEVEL":     &c.LogLevel,
		"OPENAI_API_KEY":    &c.OpenAIKey,
		"ANTHROPIC_API_KEY": &c.AnthropicKey,
	} {
		parseEnvString(key, dest)
	}
	if err := parseEnvInt("PMC_FAILURE_THRESHOLD", &c.FailureThreshold); err != nil {
		return err
	}
	if err := parseEnvInt("PMC_SUCCESS_THRESHOLD", &c.SuccessThreshold); err != nil {
		return err
	}
	return parseEnvDuration("PMC_OPEN_TIMEOUT", &c.OpenTimeout)
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.Provider != ProviderOpenAI && c.Provider != ProviderAnthropic {
		return fmt.Errorf("provider must be %q or %q (got %q)", ProviderOpenAI, ProviderAnthropic, c.Provider)
	}
	if c.Endpoint != "" && !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("endpoint must be an http(s) URL (got %q)", c.Endpoint)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.FailureThreshold < 1 {
		return fmt.Errorf("failure_threshold must be at least 1 (got %d)", c.FailureThreshold)
	}
	if c.SuccessThreshold < 1 {
		return fmt.Errorf("success_threshold must be at least 1 (got %d)", c.SuccessThreshold)
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("open_timeout must be positive (got %v)", c.OpenTimeout)
	}
	return nil
}

// APIKey returns the key for the configured provider
func (c Config) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicKey
	}
	return c.OpenAIKey
}

// String returns a human-readable representation; keys are only reported as set or not
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Endpoint: %q, Provider: %s, Model: %q, ListenAddr: %s, LogLevel: %s, "+
			"FailureThreshold: %d, SuccessThreshold: %d, OpenTimeout: %v, APIKey: %t}",
		c.Endpoint, c.Provider, c.Model, c.ListenAddr, c.LogLevel,
		c.FailureThreshold, c.SuccessThreshold, c.OpenTimeout, c.APIKey() != "",
	)
}

// ParseLevel maps a log level name onto slog
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log_level must be debug, info, warn or error (got %q)", s)
	}
	return l, nil
}

// Example is written by `pmc init`
func Example() string {
	return `# pmc configuration
# Environment variables PMC_* override these values.
# API keys come from OPENAI_API_KEY / ANTHROPIC_API_KEY only.

# Chat endpoint used by the assistant; leave empty to call the provider directly
endpoint: ""

# LLM provider (openai/anthropic) and optional model override
provider: openai
model: ""

# Address for "pmc serve"
listen_addr: 127.0.0.1:8787

log_level: warn

# Provider circuit breaker
failure_threshold: 5
success_threshold: 2
open_timeout: 30s
`
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvDuration parses a duration from an environment variable
func parseEnvDuration(key string, dest *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) {
	if value := os.Getenv(key); value != "" {
		*dest = value
	}
}
