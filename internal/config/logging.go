package config

// LoggingConfig controls the categorized file logger.
// Mirrored by internal/logging to avoid an import cycle.
type LoggingConfig struct {
	// DebugMode enables file logging. When false no logs are written.
	DebugMode bool `yaml:"debug_mode"`

	// Categories toggles individual log categories. Empty = all enabled.
	Categories map[string]bool `yaml:"categories,omitempty"`

	// Level is the minimum level: debug, info, warn, error.
	Level string `yaml:"level"`
}

// DefaultLoggingConfig returns production defaults (logging off).
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		DebugMode: false,
		Level:     "info",
	}
}
