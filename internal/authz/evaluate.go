// Package authz holds the pure permission evaluator. Decisions are values,
// not errors: callers are forced to handle every branch, and authorization
// ambiguity is always visible, never silently allowed.
package authz

import (
	"fmt"
	"strings"

	"valet/internal/action"
	"valet/internal/capability"
	"valet/internal/logging"
)

// Verdict enumerates the three possible outcomes of evaluation.
type Verdict string

const (
	// Allow means the action may dispatch without further interaction.
	Allow Verdict = "GRANTED"

	// AllowWithConfirmation means scopes are satisfied but the risk level
	// demands an explicit yes before dispatch.
	AllowWithConfirmation Verdict = "CONFIRMATION_REQUIRED"

	// Deny means at least one required scope is not granted.
	Deny Verdict = "DENIED"
)

// Prompt is the user-facing payload accompanying a non-Allow decision.
type Prompt struct {
	// MissingScopes lists the scopes the user would have to grant.
	// Empty for confirmation-only prompts.
	MissingScopes []capability.Scope

	// Message is a rendered, user-readable explanation.
	Message string
}

// Decision is the full evaluation result.
type Decision struct {
	Verdict Verdict
	Prompt  *Prompt
}

// Evaluate is a pure function over scope membership. It performs no I/O and
// no mutation; given the same consent snapshot it is deterministic.
func Evaluate(desc *action.Descriptor, consent *capability.ConsentStore) Decision {
	granted := consent.Granted()
	missing := desc.RequiredScopes().Missing(granted)

	if len(missing) > 0 {
		logging.Authz("deny %s: missing scopes %v", desc.Kind(), missing)
		return Decision{
			Verdict: Deny,
			Prompt: &Prompt{
				MissingScopes: missing,
				Message:       missingScopeMessage(desc, missing),
			},
		}
	}

	if desc.RequiresConfirmation() {
		logging.Authz("confirmation required for %s (risk=%s)", desc.Kind(), desc.Risk())
		return Decision{
			Verdict: AllowWithConfirmation,
			Prompt: &Prompt{
				MissingScopes: nil,
				Message:       fmt.Sprintf("%s is a high-risk action. Confirm to proceed.", desc.Kind()),
			},
		}
	}

	logging.AuthzDebug("allow %s", desc.Kind())
	return Decision{Verdict: Allow}
}

func missingScopeMessage(desc *action.Descriptor, missing []capability.Scope) string {
	names := make([]string, len(missing))
	for i, s := range missing {
		names[i] = string(s)
	}
	return fmt.Sprintf("%s requires the %s permission. Grant it to continue.",
		desc.Kind(), strings.Join(names, ", "))
}
