package executor

import (
	"context"
	"fmt"
	"strings"

	"valet/internal/action"
	"valet/internal/authz"
	"valet/internal/capability"
	"valet/internal/config"
	"valet/internal/followup"
	"valet/internal/logging"
	"valet/internal/session"
)

// Pipeline wires the authorization core together for one session: registry,
// consent store, guarded executor, confirmation gate, and follow-up
// context. All state is session-scoped and lost on restart.
type Pipeline struct {
	Registry *capability.Registry
	Consent  *capability.ConsentStore
	Exec     *GuardedExecutor
	Gate     *Gate
	Context  *followup.Context

	execCfg config.ExecutionConfig
}

// NewPipeline builds a fully wired pipeline. Pass nil backends for the
// default adapters.
func NewPipeline(cfg config.Config, backends map[action.Kind]Backend) *Pipeline {
	consent := capability.NewConsentStore()
	exec := NewGuardedExecutor(consent, backends)
	return &Pipeline{
		Registry: capability.DefaultRegistry(),
		Consent:  consent,
		Exec:     exec,
		Gate:     NewGate(exec),
		Context:  followup.NewContext(cfg.FollowUp),
		execCfg:  cfg.Execution,
	}
}

// Request routes one action request through the pipeline. On a
// confirmation-required verdict the pending gate is populated; on a
// successful live execution the follow-up context records the action.
func (p *Pipeline) Request(ctx context.Context, kind action.Kind, target string, params map[string]string) (*ExecutionPlan, error) {
	desc, err := action.NewDescriptor(p.Registry, kind, target, params, nil)
	if err != nil {
		return nil, err
	}

	plan := p.Exec.Execute(ctx, desc)

	switch plan.Permission {
	case authz.AllowWithConfirmation:
		preview := fmt.Sprintf("%s (risk: %s)", plan.Explanation.What, plan.Explanation.Risk)
		p.Gate.Install(desc, preview)
	case authz.Allow:
		if plan.Succeeded() {
			p.Context.Record(desc.Kind(), desc.Target(), desc.Params())
		}
	}

	return plan, nil
}

// HandleConfirmation routes an utterance to the pending gate when it is an
// explicit yes/no token. This runs before any re-interpretation of the
// utterance: confirmation handling never re-enters intent resolution.
//
// Returns handled=false when the utterance is not a confirmation token at
// all; the caller may then interpret it as a fresh request. A yes/no with
// nothing pending is handled as a safe no-op.
func (p *Pipeline) HandleConfirmation(ctx context.Context, utterance string) (handled bool, plan *ExecutionPlan, err error) {
	switch strings.ToLower(strings.TrimSpace(utterance)) {
	case "yes", "y":
		plan, err = p.Gate.Confirm(ctx)
		if err == nil && plan.Succeeded() {
			p.Context.Record(plan.Action.Kind(), plan.Action.Target(), plan.Action.Params())
		}
		return true, plan, err
	case "no", "n":
		return true, nil, p.Gate.Cancel()
	default:
		return false, nil, nil
	}
}

// Replay resolves a referential utterance and, when it binds, re-dispatches
// the remembered action. Replay bypasses the permission evaluator by
// design; scope membership is still re-checked at dispatch so a revoked
// grant cannot ride in on a follow-up.
func (p *Pipeline) Replay(ctx context.Context, utterance string, confidence float64) (followup.Resolution, *ExecutionPlan, error) {
	res := p.Context.Resolve(utterance, confidence)
	if res.Outcome != followup.Resolved {
		return res, nil, nil
	}

	target := res.Entry.Entities["target"]
	desc, err := action.NewDescriptor(p.Registry, res.Entry.Action, target, res.Entry.Entities, nil)
	if err != nil {
		return res, nil, fmt.Errorf("rebuilding replay descriptor: %w", err)
	}

	logging.Executor("replaying %s from follow-up context", desc.Kind())
	plan := p.Exec.ExecuteConfirmed(ctx, desc)
	return res, plan, nil
}

// RunPlan attaches the descriptors as sequential steps on the session and
// runs them through the guarded executor. A step that is denied or needs
// confirmation fails the plan: multi-step plans carry no interactive
// confirmation, so anything short of GRANTED stops the run.
func (p *Pipeline) RunPlan(ctx context.Context, sess *session.ExecutionSession, descs []*action.Descriptor) error {
	if max := p.execCfg.MaxPlanSteps; max > 0 && len(descs) > max {
		return fmt.Errorf("plan has %d steps, limit is %d", len(descs), max)
	}

	steps := make([]*session.Step, len(descs))
	for i, d := range descs {
		steps[i] = &session.Step{
			ID:     fmt.Sprintf("step-%d", i+1),
			Action: d,
		}
		if i > 0 {
			steps[i].DependsOn = []string{steps[i-1].ID}
		}
	}

	if err := sess.AttachPlan(steps); err != nil {
		return err
	}

	return sess.Run(ctx, func(stepCtx context.Context, step *session.Step) error {
		if t := p.execCfg.StepTimeout.Std(); t > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(stepCtx, t)
			defer cancel()
		}
		plan := p.Exec.Execute(stepCtx, step.Action)
		sess.AddObservation(plan.Describe())

		switch plan.Permission {
		case authz.Deny:
			return fmt.Errorf("step %s denied: %s", step.ID, plan.Prompt.Message)
		case authz.AllowWithConfirmation:
			return fmt.Errorf("step %s requires interactive confirmation", step.ID)
		}
		if plan.Executed && plan.Result != nil && !plan.Result.OK {
			return fmt.Errorf("step %s failed: %s", step.ID, plan.Result.Error)
		}
		if plan.Succeeded() {
			p.Context.Record(step.Action.Kind(), step.Action.Target(), step.Action.Params())
		}
		return nil
	})
}
