// Package executor implements the guarded execution pipeline: the single
// authority that sequences permission evaluation, dry-run explanation,
// confirmation gating, and dispatch to a closed whitelist of backends.
package executor

import (
	"fmt"

	"valet/internal/action"
	"valet/internal/authz"
)

// Explanation is the human-readable what/why/risk rendering of an action.
// It is built independently of the decision so denied requests still get a
// full dry-run description.
type Explanation struct {
	What string
	Why  string
	Risk string
}

// BackendResult is what a backend adapter returns from a live dispatch.
type BackendResult struct {
	// OK reports whether the effect was applied.
	OK bool

	// Detail is a short human-readable outcome description.
	Detail string

	// Error carries the backend failure, not swallowed and not retried.
	Error string
}

// ExecutionPlan is the structured outcome of one request through the
// guarded executor. Dry-run plans carry Executed=false and never touched a
// backend.
type ExecutionPlan struct {
	// ID uniquely identifies this plan.
	ID string

	// Action is the descriptor the plan was built for.
	Action *action.Descriptor

	// Explanation describes the effect regardless of the decision.
	Explanation Explanation

	// Permission is the evaluator's verdict.
	Permission authz.Verdict

	// Prompt is present for Deny and AllowWithConfirmation verdicts.
	Prompt *authz.Prompt

	// Executed is true only when a backend was actually invoked.
	Executed bool

	// Result holds the backend outcome when Executed, or the reason the
	// action was not live-executable.
	Result *BackendResult
}

// Succeeded reports whether the plan executed and the backend reported OK.
func (p *ExecutionPlan) Succeeded() bool {
	return p.Executed && p.Result != nil && p.Result.OK
}

// Describe renders the plan for the confirmation/UI layer.
func (p *ExecutionPlan) Describe() string {
	s := fmt.Sprintf("%s\n  what: %s\n  why: %s\n  risk: %s\n  permission: %s",
		p.Action.Kind(), p.Explanation.What, p.Explanation.Why, p.Explanation.Risk, p.Permission)
	if p.Prompt != nil {
		s += "\n  prompt: " + p.Prompt.Message
	}
	if p.Result != nil {
		if p.Result.Error != "" {
			s += "\n  error: " + p.Result.Error
		} else {
			s += "\n  result: " + p.Result.Detail
		}
	}
	return s
}

func buildExplanation(desc *action.Descriptor) Explanation {
	what := fmt.Sprintf("%s on %q", desc.Kind(), desc.Target())
	why := "requested by the user"
	if reason, ok := desc.Param("reason"); ok && reason != "" {
		why = reason
	}
	return Explanation{
		What: what,
		Why:  why,
		Risk: string(desc.Risk()),
	}
}
