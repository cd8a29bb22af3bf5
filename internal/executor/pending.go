package executor

import (
	"context"
	"fmt"

	"valet/internal/action"
	"valet/internal/logging"
)

// PendingStatus is the confirmation gate state machine.
type PendingStatus string

const (
	StatusAwaitingConfirmation PendingStatus = "awaiting_confirmation"
	StatusExecuted             PendingStatus = "executed"
	StatusCancelled            PendingStatus = "cancelled"
)

// PendingAction holds one action awaiting an explicit yes/no.
type PendingAction struct {
	// Action is the descriptor being guarded.
	Action *action.Descriptor

	// Preview is a read-only description of the effect (resolved path,
	// size, and so on) shown to the user before they answer.
	Preview string

	// UndoPlan is a placeholder describing how the effect could be
	// reverted. It is never executed.
	UndoPlan string

	// Status transitions awaiting_confirmation -> executed|cancelled.
	// Both transitions are terminal.
	Status PendingStatus
}

// ErrNothingPending is returned when confirm/cancel finds an empty slot.
// A repeated "yes" after the first confirmation lands here: a safe no-op,
// never a second side effect.
var ErrNothingPending = fmt.Errorf("nothing to confirm")

// Gate owns the session's single pending-action slot. Creating a new
// pending action implicitly discards the prior unconfirmed one.
type Gate struct {
	exec    *GuardedExecutor
	pending *PendingAction
}

// NewGate creates an empty gate dispatching through the given executor.
func NewGate(exec *GuardedExecutor) *Gate {
	return &Gate{exec: exec}
}

// Install replaces the pending slot with a new awaiting action.
func (g *Gate) Install(desc *action.Descriptor, preview string) *PendingAction {
	if g.pending != nil && g.pending.Status == StatusAwaitingConfirmation {
		logging.Executor("gate: discarding unconfirmed %s", g.pending.Action.Kind())
	}
	g.pending = &PendingAction{
		Action:   desc,
		Preview:  preview,
		UndoPlan: "undo not implemented",
		Status:   StatusAwaitingConfirmation,
	}
	logging.Executor("gate: %s awaiting confirmation", desc.Kind())
	return g.pending
}

// Pending returns the current pending action, or nil.
func (g *Gate) Pending() *PendingAction { return g.pending }

// HasPending reports whether an action is awaiting confirmation.
func (g *Gate) HasPending() bool {
	return g.pending != nil && g.pending.Status == StatusAwaitingConfirmation
}

// Confirm consumes the pending slot and dispatches exactly once. The slot
// is cleared regardless of backend outcome, so a second confirm is a no-op
// error, never a second dispatch.
func (g *Gate) Confirm(ctx context.Context) (*ExecutionPlan, error) {
	if !g.HasPending() {
		return nil, ErrNothingPending
	}

	pending := g.pending
	pending.Status = StatusExecuted
	g.pending = nil

	plan := g.exec.ExecuteConfirmed(ctx, pending.Action)
	logging.Executor("gate: %s confirmed, executed=%v", pending.Action.Kind(), plan.Executed)
	return plan, nil
}

// Cancel consumes the pending slot without touching any backend.
func (g *Gate) Cancel() error {
	if !g.HasPending() {
		return ErrNothingPending
	}
	g.pending.Status = StatusCancelled
	logging.Executor("gate: %s cancelled", g.pending.Action.Kind())
	g.pending = nil
	return nil
}
