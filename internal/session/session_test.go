package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func threeSteps() []*Step {
	return []*Step{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
	}
}

func TestAttachPlan_OneShot(t *testing.T) {
	sess := New()

	if err := sess.AttachPlan(threeSteps()); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if sess.State() != StatePlanned {
		t.Fatalf("state = %s, want planned", sess.State())
	}

	if err := sess.AttachPlan(threeSteps()); err == nil {
		t.Fatal("second attach must be a hard failure")
	}
}

func TestAttachPlan_RejectsBadPlans(t *testing.T) {
	cases := []struct {
		name  string
		steps []*Step
	}{
		{"empty", nil},
		{"missing id", []*Step{{}}},
		{"duplicate id", []*Step{{ID: "a"}, {ID: "a"}}},
		{"unknown dependency", []*Step{{ID: "a", DependsOn: []string{"ghost"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := New().AttachPlan(tc.steps); err == nil {
				t.Error("expected attach failure")
			}
		})
	}
}

func TestRun_CompletesInDependencyOrder(t *testing.T) {
	sess := New()
	steps := []*Step{
		{ID: "build"},
		{ID: "verify", DependsOn: []string{"build"}},
	}
	if err := sess.AttachPlan(steps); err != nil {
		t.Fatal(err)
	}

	var order []string
	err := sess.Run(context.Background(), func(ctx context.Context, step *Step) error {
		order = append(order, step.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sess.State() != StateCompleted {
		t.Errorf("state = %s, want completed", sess.State())
	}
	if len(order) != 2 || order[0] != "build" || order[1] != "verify" {
		t.Errorf("execution order = %v", order)
	}
	for _, st := range steps {
		if st.State != StepDone {
			t.Errorf("step %s state = %s, want done", st.ID, st.State)
		}
	}
}

func TestRun_StepFailureStopsPlan(t *testing.T) {
	sess := New()
	steps := threeSteps()
	if err := sess.AttachPlan(steps); err != nil {
		t.Fatal(err)
	}

	err := sess.Run(context.Background(), func(ctx context.Context, step *Step) error {
		if step.ID == "b" {
			return errors.New("backend unavailable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run returned %v", err)
	}

	if sess.State() != StateFailed {
		t.Fatalf("state = %s, want failed", sess.State())
	}
	if steps[0].State != StepDone {
		t.Errorf("step a = %s, want done", steps[0].State)
	}
	if steps[1].State != StepFailed || steps[1].Error == "" {
		t.Errorf("step b = %s (%q), want failed with message", steps[1].State, steps[1].Error)
	}
	if steps[2].State != StepSkipped {
		t.Errorf("step c = %s, want skipped", steps[2].State)
	}
}

func TestRun_AbortBeforeStepStart(t *testing.T) {
	sess := New()
	steps := threeSteps()
	if err := sess.AttachPlan(steps); err != nil {
		t.Fatal(err)
	}

	// Abort lands while step b runs; c must never start.
	var wg sync.WaitGroup
	err := sess.Run(context.Background(), func(ctx context.Context, step *Step) error {
		if step.ID == "b" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sess.Abort()
			}()
			wg.Wait()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if sess.State() != StateCancelled {
		t.Fatalf("state = %s, want cancelled", sess.State())
	}
	if steps[0].State != StepDone {
		t.Errorf("step a = %s, want done", steps[0].State)
	}
	// b had already finished when the abort was observed; it keeps the
	// state it was left in.
	if steps[1].State != StepDone {
		t.Errorf("step b = %s, want done", steps[1].State)
	}
	if steps[2].State != StepSkipped || steps[2].Error != "session_cancelled" {
		t.Errorf("step c = %s (%q), want skipped/session_cancelled", steps[2].State, steps[2].Error)
	}
}

func TestAbort_SkipsPendingAndReady(t *testing.T) {
	// Direct state-machine check for the mid-plan snapshot: A done,
	// B running, C pending.
	sess := New()
	steps := []*Step{
		{ID: "a", State: StepDone},
		{ID: "b", State: StepRunning},
		{ID: "c", State: StepPending},
	}
	sess.steps = steps
	sess.state = StateRunning

	sess.Abort()
	sess.cancelRemaining()
	sess.state = StateCancelled

	if steps[1].State != StepRunning {
		t.Errorf("running step must be left as observed, got %s", steps[1].State)
	}
	if steps[2].State != StepSkipped || steps[2].Error != "session_cancelled" {
		t.Errorf("pending step = %s (%q), want skipped/session_cancelled", steps[2].State, steps[2].Error)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	sess := New()
	if err := sess.AttachPlan(threeSteps()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sess.Run(ctx, func(ctx context.Context, step *Step) error { return nil }); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sess.State() != StateCancelled {
		t.Errorf("state = %s, want cancelled", sess.State())
	}
}

func TestObservations_AppendOnlyCopy(t *testing.T) {
	sess := New()
	sess.AddObservation("first")
	sess.AddObservation("second")

	obs := sess.Observations()
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	obs[0] = "tampered"
	if sess.Observations()[0] != "first" {
		t.Error("mutating the returned slice reached the session")
	}
}
