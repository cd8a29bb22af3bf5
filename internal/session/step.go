// Package session tracks a multi-step plan's lifecycle with cooperative
// abort. One session owns its state exclusively; the abort flag is the only
// field observable across goroutines.
package session

import "valet/internal/action"

// StepState is the per-step state machine.
type StepState string

const (
	StepPending StepState = "pending"
	StepReady   StepState = "ready"
	StepRunning StepState = "running"
	StepDone    StepState = "done"
	StepFailed  StepState = "failed"
	StepSkipped StepState = "skipped"
)

// Step is one unit of a plan. Steps execute in dependency order; a step
// whose dependencies are not all done never starts.
type Step struct {
	// ID identifies the step within its session.
	ID string

	// Action is the descriptor this step routes through the guarded
	// executor.
	Action *action.Descriptor

	// DependsOn lists step IDs that must be done first.
	DependsOn []string

	// State is the current step state.
	State StepState

	// Error holds the failure or skip reason, when any.
	Error string
}

// terminal reports whether the step can no longer change state.
func (s *Step) terminal() bool {
	switch s.State {
	case StepDone, StepFailed, StepSkipped:
		return true
	}
	return false
}
