package config

import "time"

// ExecutionConfig configures the guarded executor.
type ExecutionConfig struct {
	// StepTimeout bounds a single plan step.
	StepTimeout Duration `yaml:"step_timeout,omitempty"`

	// MaxPlanSteps limits how many steps one session may carry.
	MaxPlanSteps int `yaml:"max_plan_steps,omitempty"`
}

// DefaultExecutionConfig returns sensible defaults.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		StepTimeout:  Duration(60 * time.Second),
		MaxPlanSteps: 20,
	}
}
