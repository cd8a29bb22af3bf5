package executor

import (
	"context"

	"github.com/google/uuid"

	"valet/internal/action"
	"valet/internal/authz"
	"valet/internal/capability"
	"valet/internal/logging"
)

// GuardedExecutor sequences evaluator, preview, and dispatch. It is the only
// component allowed to invoke a real backend. No internal locking: one
// in-flight decision per session.
type GuardedExecutor struct {
	consent  *capability.ConsentStore
	backends map[action.Kind]Backend
}

// NewGuardedExecutor creates an executor over the given consent store and
// backend adapters. Pass DefaultBackends() for the stub adapters.
func NewGuardedExecutor(consent *capability.ConsentStore, backends map[action.Kind]Backend) *GuardedExecutor {
	if backends == nil {
		backends = DefaultBackends()
	}
	return &GuardedExecutor{consent: consent, backends: backends}
}

// Execute runs one descriptor through the pipeline and returns a plan. Deny
// and confirmation-required paths are dry runs that never touch a backend;
// the caller is responsible for installing a pending action on
// AllowWithConfirmation.
func (e *GuardedExecutor) Execute(ctx context.Context, desc *action.Descriptor) *ExecutionPlan {
	plan := &ExecutionPlan{
		ID:          uuid.NewString(),
		Action:      desc,
		Explanation: buildExplanation(desc),
	}

	decision := authz.Evaluate(desc, e.consent)
	plan.Permission = decision.Verdict
	plan.Prompt = decision.Prompt

	switch decision.Verdict {
	case authz.Deny:
		logging.Executor("plan %s: %s denied", plan.ID, desc.Kind())
		return plan
	case authz.AllowWithConfirmation:
		logging.Executor("plan %s: %s needs confirmation", plan.ID, desc.Kind())
		return plan
	case authz.Allow:
		e.dispatch(ctx, plan)
		return plan
	default:
		// Unreachable with a well-formed decision; treated as deny.
		plan.Permission = authz.Deny
		return plan
	}
}

// ExecuteConfirmed dispatches a descriptor whose confirmation has already
// been consumed by the gate. Scope membership is re-checked against the
// current consent snapshot; a revoked grant turns the confirmation into a
// denial rather than a silent execution.
func (e *GuardedExecutor) ExecuteConfirmed(ctx context.Context, desc *action.Descriptor) *ExecutionPlan {
	plan := &ExecutionPlan{
		ID:          uuid.NewString(),
		Action:      desc,
		Explanation: buildExplanation(desc),
	}

	missing := desc.RequiredScopes().Missing(e.consent.Granted())
	if len(missing) > 0 {
		plan.Permission = authz.Deny
		plan.Prompt = &authz.Prompt{
			MissingScopes: missing,
			Message:       "permission was revoked before confirmation",
		}
		logging.ExecutorWarn("plan %s: %s confirmed but scopes revoked", plan.ID, desc.Kind())
		return plan
	}

	plan.Permission = authz.Allow
	e.dispatch(ctx, plan)
	return plan
}

// dispatch invokes the backend for whitelisted kinds only. Every other kind,
// even with all scopes granted, returns a non-executed plan.
func (e *GuardedExecutor) dispatch(ctx context.Context, plan *ExecutionPlan) {
	kind := plan.Action.Kind()

	if !liveExecutable(kind) {
		plan.Result = &BackendResult{OK: false, Error: "not enabled for live execution"}
		logging.Executor("plan %s: %s permitted but not live-executable", plan.ID, kind)
		return
	}

	backend, ok := e.backends[kind]
	if !ok {
		plan.Result = &BackendResult{OK: false, Error: "no backend adapter registered"}
		logging.ExecutorWarn("plan %s: %s whitelisted but has no adapter", plan.ID, kind)
		return
	}

	result, err := backend.Dispatch(ctx, plan.Action)
	plan.Executed = true
	if err != nil {
		plan.Result = &BackendResult{OK: false, Error: err.Error()}
		logging.ExecutorWarn("plan %s: backend failed: %v", plan.ID, err)
		return
	}
	plan.Result = &result
	logging.Executor("plan %s: %s executed ok=%v", plan.ID, kind, result.OK)
}
