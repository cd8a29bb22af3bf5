package authz

import (
	"testing"

	"valet/internal/action"
	"valet/internal/capability"
)

func mustDescriptor(t *testing.T, kind action.Kind) *action.Descriptor {
	t.Helper()
	desc, err := action.NewDescriptor(capability.DefaultRegistry(), kind, "x", nil, nil)
	if err != nil {
		t.Fatalf("NewDescriptor(%s): %v", kind, err)
	}
	return desc
}

func TestEvaluate_DenyNamesMissingScopes(t *testing.T) {
	desc := mustDescriptor(t, action.KindOpenApplication)
	consent := capability.NewConsentStore()

	decision := Evaluate(desc, consent)
	if decision.Verdict != Deny {
		t.Fatalf("expected Deny, got %s", decision.Verdict)
	}
	if decision.Prompt == nil {
		t.Fatal("deny decision must carry a prompt")
	}
	if len(decision.Prompt.MissingScopes) != 1 || decision.Prompt.MissingScopes[0] != capability.ScopeAppControl {
		t.Errorf("expected missing [%s], got %v", capability.ScopeAppControl, decision.Prompt.MissingScopes)
	}
}

func TestEvaluate_AllowWhenGranted(t *testing.T) {
	desc := mustDescriptor(t, action.KindOpenApplication)
	consent := capability.NewConsentStore()
	consent.Grant(capability.ScopeAppControl)

	decision := Evaluate(desc, consent)
	if decision.Verdict != Allow {
		t.Fatalf("expected Allow, got %s", decision.Verdict)
	}
	if decision.Prompt != nil {
		t.Error("allow decision must not carry a prompt")
	}
}

func TestEvaluate_HighRiskNeedsConfirmation(t *testing.T) {
	desc := mustDescriptor(t, action.KindDeleteFile)
	consent := capability.NewConsentStore()
	consent.Grant(capability.ScopeFileDelete)

	decision := Evaluate(desc, consent)
	if decision.Verdict != AllowWithConfirmation {
		t.Fatalf("expected AllowWithConfirmation, got %s", decision.Verdict)
	}
	if decision.Prompt == nil {
		t.Fatal("confirmation decision must carry a prompt")
	}
	if len(decision.Prompt.MissingScopes) != 0 {
		t.Errorf("confirmation prompt must have an empty missing-scope list, got %v",
			decision.Prompt.MissingScopes)
	}
}

func TestEvaluate_MissingScopeWinsOverConfirmation(t *testing.T) {
	// High risk without the scope is a denial, not a confirmation prompt.
	desc := mustDescriptor(t, action.KindDeleteFile)
	consent := capability.NewConsentStore()

	decision := Evaluate(desc, consent)
	if decision.Verdict != Deny {
		t.Fatalf("expected Deny, got %s", decision.Verdict)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	desc := mustDescriptor(t, action.KindOpenFile)
	consent := capability.NewConsentStore()

	first := Evaluate(desc, consent)
	second := Evaluate(desc, consent)
	if first.Verdict != second.Verdict {
		t.Errorf("same snapshot produced different verdicts: %s vs %s", first.Verdict, second.Verdict)
	}
}
