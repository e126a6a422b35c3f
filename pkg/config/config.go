// Package config loads process-wide settings for the webscope core.
// All limits here are defaults; callers may override them per call.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// TelemetryConfig bounds the per-session telemetry buffers.
type TelemetryConfig struct {
	// Maximum buffered entries per session, oldest evicted first
	MaxConsoleMessages    int `yaml:"max_console_messages" json:"max_console_messages"`
	MaxNetworkRequests    int `yaml:"max_network_requests" json:"max_network_requests"`
	MaxPerformanceSamples int `yaml:"max_performance_samples" json:"max_performance_samples"`

	// Default trailing window for queries and snapshots
	CaptureWindow time.Duration `yaml:"capture_window" json:"capture_window"`
}

// ContextConfig bounds the assembled model context.
type ContextConfig struct {
	MaxConsoleErrors   int           `yaml:"max_console_errors" json:"max_console_errors"`
	MaxConsoleWarnings int           `yaml:"max_console_warnings" json:"max_console_warnings"`
	MaxNetworkFailures int           `yaml:"max_network_failures" json:"max_network_failures"`
	SlowRequestAbove   time.Duration `yaml:"slow_request_above" json:"slow_request_above"`
	MaxTokens          int           `yaml:"max_tokens" json:"max_tokens"`
}

// CustomPattern is a caller-supplied redaction rule.
type CustomPattern struct {
	Name        string `yaml:"name" json:"name"`
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement,omitempty" json:"replacement,omitempty"`
}

// RedactionConfig toggles the built-in pattern catalogue and carries custom
// rules. Pattern names match pkg/redact's catalogue; unknown names are ignored.
type RedactionConfig struct {
	DisabledPatterns []string        `yaml:"disabled_patterns" json:"disabled_patterns"`
	CustomPatterns   []CustomPattern `yaml:"custom_patterns" json:"custom_patterns"`
	PatternTimeout   time.Duration   `yaml:"pattern_timeout" json:"pattern_timeout"`
}

// Config is the full settings file, loaded from ~/.webscope/config.yaml by
// default.
type Config struct {
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Context   ContextConfig   `yaml:"context" json:"context"`
	Redaction RedactionConfig `yaml:"redaction" json:"redaction"`
}

// Default returns the built-in settings used when no config file exists.
func Default() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			MaxConsoleMessages:    1000,
			MaxNetworkRequests:    500,
			MaxPerformanceSamples: 100,
			CaptureWindow:         time.Hour,
		},
		Context: ContextConfig{
			MaxConsoleErrors:   10,
			MaxConsoleWarnings: 5,
			MaxNetworkFailures: 10,
			SlowRequestAbove:   3 * time.Second,
			MaxTokens:          8000,
		},
		Redaction: RedactionConfig{
			PatternTimeout: 100 * time.Millisecond,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".webscope", "config.yaml"), nil
}

// Load reads the YAML config at path, filling unset fields with defaults.
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path is from trusted config location
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Telemetry.MaxConsoleMessages <= 0 {
		c.Telemetry.MaxConsoleMessages = d.Telemetry.MaxConsoleMessages
	}
	if c.Telemetry.MaxNetworkRequests <= 0 {
		c.Telemetry.MaxNetworkRequests = d.Telemetry.MaxNetworkRequests
	}
	if c.Telemetry.MaxPerformanceSamples <= 0 {
		c.Telemetry.MaxPerformanceSamples = d.Telemetry.MaxPerformanceSamples
	}
	if c.Telemetry.CaptureWindow <= 0 {
		c.Telemetry.CaptureWindow = d.Telemetry.CaptureWindow
	}
	if c.Context.MaxConsoleErrors <= 0 {
		c.Context.MaxConsoleErrors = d.Context.MaxConsoleErrors
	}
	if c.Context.MaxConsoleWarnings <= 0 {
		c.Context.MaxConsoleWarnings = d.Context.MaxConsoleWarnings
	}
	if c.Context.MaxNetworkFailures <= 0 {
		c.Context.MaxNetworkFailures = d.Context.MaxNetworkFailures
	}
	if c.Context.SlowRequestAbove <= 0 {
		c.Context.SlowRequestAbove = d.Context.SlowRequestAbove
	}
	if c.Context.MaxTokens <= 0 {
		c.Context.MaxTokens = d.Context.MaxTokens
	}
	if c.Redaction.PatternTimeout <= 0 {
		c.Redaction.PatternTimeout = d.Redaction.PatternTimeout
	}
}

// Validate rejects settings that would make the core misbehave.
func (c *Config) Validate() error {
	if c.Telemetry.MaxConsoleMessages > 100000 {
		return fmt.Errorf("telemetry.max_console_messages too large: %d", c.Telemetry.MaxConsoleMessages)
	}
	if c.Context.MaxTokens > 2000000 {
		return fmt.Errorf("context.max_tokens too large: %d", c.Context.MaxTokens)
	}
	for _, p := range c.Redaction.CustomPatterns {
		if p.Name == "" {
			return fmt.Errorf("redaction custom pattern missing name")
		}
		if p.Pattern == "" {
			return fmt.Errorf("redaction custom pattern %q missing pattern", p.Name)
		}
	}
	return nil
}
