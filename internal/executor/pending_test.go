package executor

import (
	"context"
	"errors"
	"testing"

	"valet/internal/action"
	"valet/internal/capability"
)

func TestGate_ConfirmDispatchesExactlyOnce(t *testing.T) {
	backend := &countingBackend{result: BackendResult{OK: true}}
	exec, consent := newTestExecutor(map[action.Kind]Backend{action.KindOpenApplication: backend})
	consent.Grant(capability.ScopeAppControl)
	gate := NewGate(exec)

	desc := mustDesc(t, action.KindOpenApplication, "firefox")
	gate.Install(desc, "open firefox")

	plan, err := gate.Confirm(context.Background())
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if !plan.Succeeded() {
		t.Fatalf("first confirm did not execute: %+v", plan.Result)
	}
	if backend.calls != 1 {
		t.Fatalf("expected one dispatch, got %d", backend.calls)
	}

	// A repeated "yes" is a safe no-op, never a second side effect.
	if _, err := gate.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("second confirm: want ErrNothingPending, got %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("second confirm reached the backend: %d calls", backend.calls)
	}
}

func TestGate_SlotClearedEvenOnBackendFailure(t *testing.T) {
	backend := &countingBackend{err: errors.New("launcher crashed")}
	exec, consent := newTestExecutor(map[action.Kind]Backend{action.KindOpenApplication: backend})
	consent.Grant(capability.ScopeAppControl)
	gate := NewGate(exec)

	gate.Install(mustDesc(t, action.KindOpenApplication, "firefox"), "open firefox")

	plan, err := gate.Confirm(context.Background())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if plan.Result == nil || plan.Result.OK {
		t.Fatal("expected failed result from crashing backend")
	}
	if gate.HasPending() {
		t.Error("slot must clear regardless of backend outcome")
	}
	if _, err := gate.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Error("consumed slot should report nothing to confirm")
	}
}

func TestGate_CancelNeverTouchesBackend(t *testing.T) {
	backend := &countingBackend{result: BackendResult{OK: true}}
	exec, consent := newTestExecutor(map[action.Kind]Backend{action.KindOpenApplication: backend})
	consent.Grant(capability.ScopeAppControl)
	gate := NewGate(exec)

	gate.Install(mustDesc(t, action.KindOpenApplication, "firefox"), "open firefox")

	if err := gate.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if backend.calls != 0 {
		t.Errorf("cancel touched the backend %d times", backend.calls)
	}
	if gate.HasPending() {
		t.Error("cancel must clear the slot")
	}
	if err := gate.Cancel(); !errors.Is(err, ErrNothingPending) {
		t.Error("second cancel should report nothing to confirm")
	}
}

func TestGate_NewPendingDiscardsPrior(t *testing.T) {
	exec, _ := newTestExecutor(nil)
	gate := NewGate(exec)

	first := gate.Install(mustDesc(t, action.KindDeleteFile, "/tmp/a"), "delete a")
	second := gate.Install(mustDesc(t, action.KindDeleteFile, "/tmp/b"), "delete b")

	if gate.Pending() != second {
		t.Error("gate should hold the newest pending action")
	}
	if first == second {
		t.Error("expected distinct pending actions")
	}
	if got := gate.Pending().Action.Target(); got != "/tmp/b" {
		t.Errorf("pending target = %q, want /tmp/b", got)
	}
}

func TestGate_StatusTransitions(t *testing.T) {
	exec, consent := newTestExecutor(nil)
	consent.Grant(capability.ScopeAppControl)
	gate := NewGate(exec)

	pending := gate.Install(mustDesc(t, action.KindOpenApplication, "firefox"), "open firefox")
	if pending.Status != StatusAwaitingConfirmation {
		t.Fatalf("fresh pending status = %s", pending.Status)
	}

	if _, err := gate.Confirm(context.Background()); err != nil {
		t.Fatal(err)
	}
	if pending.Status != StatusExecuted {
		t.Errorf("confirmed status = %s, want %s", pending.Status, StatusExecuted)
	}

	cancelled := gate.Install(mustDesc(t, action.KindOpenApplication, "vim"), "open vim")
	if err := gate.Cancel(); err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("cancelled status = %s, want %s", cancelled.Status, StatusCancelled)
	}
}
