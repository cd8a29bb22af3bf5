package session

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"valet/internal/logging"
)

// State is the session lifecycle.
type State string

const (
	StateCreated   State = "created"
	StatePlanned   State = "planned"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// skipReasonCancelled is recorded on steps skipped by an abort.
const skipReasonCancelled = "session_cancelled"

// StepFunc executes one step. A returned error marks the step failed and
// the session with it; remaining steps are not attempted.
type StepFunc func(ctx context.Context, step *Step) error

// ExecutionSession tracks one plan through its lifecycle.
//
// The session is single-writer: all methods except Abort must be called
// from the owning goroutine. Abort only sets the atomic flag and may be
// called from anywhere (an interrupt handler, typically); the step loop
// observes it before each step.
type ExecutionSession struct {
	id           string
	state        State
	steps        []*Step
	observations []string

	abort atomic.Bool
}

// New creates a session in the created state.
func New() *ExecutionSession {
	s := &ExecutionSession{
		id:    uuid.NewString(),
		state: StateCreated,
	}
	logging.Session("session %s created", s.id)
	return s
}

// ID returns the session identifier.
func (s *ExecutionSession) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *ExecutionSession) State() State { return s.state }

// Steps returns the plan's steps in order.
func (s *ExecutionSession) Steps() []*Step { return s.steps }

// AttachPlan attaches the ordered step list. One-shot: valid only from the
// created state; a second attach is a hard failure, not a silent merge.
func (s *ExecutionSession) AttachPlan(steps []*Step) error {
	if s.state != StateCreated {
		return fmt.Errorf("cannot attach plan in state %s", s.state)
	}
	if len(steps) == 0 {
		return fmt.Errorf("plan must have at least one step")
	}

	ids := make(map[string]struct{}, len(steps))
	for _, st := range steps {
		if st.ID == "" {
			return fmt.Errorf("step without ID")
		}
		if _, dup := ids[st.ID]; dup {
			return fmt.Errorf("duplicate step ID %q", st.ID)
		}
		ids[st.ID] = struct{}{}
	}
	for _, st := range steps {
		for _, dep := range st.DependsOn {
			if _, ok := ids[dep]; !ok {
				return fmt.Errorf("step %q depends on unknown step %q", st.ID, dep)
			}
		}
		st.State = StepPending
	}

	s.steps = steps
	s.state = StatePlanned
	logging.Session("session %s planned with %d steps", s.id, len(steps))
	return nil
}

// Abort requests cooperative cancellation. Safe to call from any goroutine;
// the step loop observes the flag before starting each step. A session that
// is not running is cancelled immediately.
func (s *ExecutionSession) Abort() {
	s.abort.Store(true)
	logging.Session("session %s abort requested", s.id)
}

// Aborted reports whether an abort has been requested.
func (s *ExecutionSession) Aborted() bool { return s.abort.Load() }

// Run executes the plan step-by-step in dependency order.
//
// An abort observed before a step starts cancels the whole session: every
// step still pending or ready is skipped with reason session_cancelled. A
// step failure fails the session and remaining steps are not attempted.
// There is no partial rollback and no retry.
func (s *ExecutionSession) Run(ctx context.Context, fn StepFunc) error {
	if s.state != StatePlanned {
		return fmt.Errorf("cannot run in state %s", s.state)
	}
	s.state = StateRunning
	logging.Session("session %s running", s.id)

	for {
		if s.abort.Load() || ctx.Err() != nil {
			s.cancelRemaining()
			s.state = StateCancelled
			logging.Session("session %s cancelled", s.id)
			return nil
		}

		step := s.nextReady()
		if step == nil {
			break
		}

		step.State = StepRunning
		logging.SessionDebug("session %s: step %s running", s.id, step.ID)

		if err := fn(ctx, step); err != nil {
			step.State = StepFailed
			step.Error = err.Error()
			s.skipUnstarted("dependency not satisfied")
			s.state = StateFailed
			logging.Session("session %s failed at step %s: %v", s.id, step.ID, err)
			return nil
		}
		step.State = StepDone
	}

	// A blocked (unrunnable) step with an unmet dependency is a plan bug.
	for _, st := range s.steps {
		if !st.terminal() && st.State != StepRunning {
			s.skipUnstarted("dependency not satisfied")
			s.state = StateFailed
			return fmt.Errorf("plan deadlock: step %s never became ready", st.ID)
		}
	}

	s.state = StateCompleted
	logging.Session("session %s completed", s.id)
	return nil
}

// nextReady returns the first step whose dependencies are all done, marking
// it ready, or nil when none remain.
func (s *ExecutionSession) nextReady() *Step {
	for _, st := range s.steps {
		if st.State != StepPending && st.State != StepReady {
			continue
		}
		if s.depsDone(st) {
			st.State = StepReady
			return st
		}
	}
	return nil
}

func (s *ExecutionSession) depsDone(st *Step) bool {
	for _, dep := range st.DependsOn {
		found := false
		for _, other := range s.steps {
			if other.ID == dep {
				found = other.State == StepDone
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// cancelRemaining skips every step still pending or ready. A step already
// running is left as it was observed.
func (s *ExecutionSession) cancelRemaining() {
	for _, st := range s.steps {
		if st.State == StepPending || st.State == StepReady {
			st.State = StepSkipped
			st.Error = skipReasonCancelled
		}
	}
}

func (s *ExecutionSession) skipUnstarted(reason string) {
	for _, st := range s.steps {
		if st.State == StepPending || st.State == StepReady {
			st.State = StepSkipped
			st.Error = reason
		}
	}
}

// AddObservation appends a read-only note to the session record.
func (s *ExecutionSession) AddObservation(obs string) {
	s.observations = append(s.observations, obs)
}

// Observations returns a copy of the append-only observation list.
func (s *ExecutionSession) Observations() []string {
	out := make([]string, len(s.observations))
	copy(out, s.observations)
	return out
}
