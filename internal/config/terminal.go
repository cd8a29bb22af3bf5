package config

import (
	"fmt"
	"time"
)

// TerminalConfig configures the terminal sandbox.
type TerminalConfig struct {
	// AllowedCommands is the closed allow-list of observation binaries.
	AllowedCommands []string `yaml:"allowed_commands"`

	// ConfirmToken is the exact-match token that releases a validated
	// command for execution. Matching is case-sensitive.
	ConfirmToken string `yaml:"confirm_token"`

	// Timeout is the hard wall-clock limit for a command.
	Timeout Duration `yaml:"timeout"`

	// MaxOutputBytes caps captured stdout+stderr.
	MaxOutputBytes int64 `yaml:"max_output_bytes"`

	// MaxOutputLines caps the rendered line count.
	MaxOutputLines int `yaml:"max_output_lines"`
}

// DefaultTerminalConfig returns the sandbox policy defaults.
func DefaultTerminalConfig() TerminalConfig {
	return TerminalConfig{
		AllowedCommands: []string{
			"ls", "pwd", "date", "whoami", "uptime", "uname",
			"df", "free", "ps", "hostname",
		},
		ConfirmToken:   "YES",
		Timeout:        Duration(10 * time.Second),
		MaxOutputBytes: 64 * 1024,
		MaxOutputLines: 200,
	}
}

// Validate rejects values that would disable the sandbox's resource caps.
func (c TerminalConfig) Validate() error {
	if len(c.AllowedCommands) == 0 {
		return fmt.Errorf("allowed_commands must not be empty")
	}
	if c.ConfirmToken == "" {
		return fmt.Errorf("confirm_token must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxOutputBytes <= 0 {
		return fmt.Errorf("max_output_bytes must be positive, got %d", c.MaxOutputBytes)
	}
	if c.MaxOutputLines <= 0 {
		return fmt.Errorf("max_output_lines must be positive, got %d", c.MaxOutputLines)
	}
	return nil
}
