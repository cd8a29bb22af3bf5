// Package config holds all valet configuration. Policy constants (replay
// windows, confirmation tokens, terminal allow-lists) are configuration, not
// hard-coded literals, but their defaults are the authoritative values the
// rest of the system was tuned against.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all valet configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Follow-up context and replay policy
	FollowUp FollowUpConfig `yaml:"follow_up"`

	// Terminal sandbox policy
	Terminal TerminalConfig `yaml:"terminal"`

	// Guarded execution settings
	Execution ExecutionConfig `yaml:"execution"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Name:      "valet",
		Version:   "1.0.0",
		FollowUp:  DefaultFollowUpConfig(),
		Terminal:  DefaultTerminalConfig(),
		Execution: DefaultExecutionConfig(),
		Logging:   DefaultLoggingConfig(),
	}
}

// Load reads configuration from a YAML file, merged over defaults.
// A missing file is not an error; defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that would disable safety floors.
func (c Config) Validate() error {
	if err := c.FollowUp.Validate(); err != nil {
		return fmt.Errorf("follow_up: %w", err)
	}
	if err := c.Terminal.Validate(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	return nil
}
