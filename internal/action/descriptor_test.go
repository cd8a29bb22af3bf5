package action

import (
	"testing"

	"valet/internal/capability"
)

func TestNewDescriptor_ScopesFromRegistry(t *testing.T) {
	reg := capability.DefaultRegistry()

	for _, kind := range AllKinds {
		desc, err := NewDescriptor(reg, kind, "x", nil, nil)
		if err != nil {
			t.Fatalf("NewDescriptor(%s): %v", kind, err)
		}
		if !desc.RequiredScopes().Equal(reg.RequiredScopes(string(kind))) {
			t.Errorf("%s: descriptor scopes disagree with registry", kind)
		}
	}
}

func TestNewDescriptor_DeclaredScopeMismatchFails(t *testing.T) {
	reg := capability.DefaultRegistry()

	wrong := capability.NewScopeSet(capability.ScopeBrowser)
	if _, err := NewDescriptor(reg, KindDeleteFile, "/tmp/x", nil, wrong); err == nil {
		t.Fatal("expected construction failure for mismatched declared scopes")
	}

	// An exactly-matching declaration is accepted.
	right := capability.NewScopeSet(capability.ScopeFileDelete)
	if _, err := NewDescriptor(reg, KindDeleteFile, "/tmp/x", nil, right); err != nil {
		t.Fatalf("matching declaration rejected: %v", err)
	}
}

func TestNewDescriptor_UnknownKindFails(t *testing.T) {
	reg := capability.DefaultRegistry()
	if _, err := NewDescriptor(reg, KindUnknown, "", nil, nil); err == nil {
		t.Fatal("expected failure for unknown kind")
	}
}

func TestDescriptor_ConfirmationDerivedFromRisk(t *testing.T) {
	reg := capability.DefaultRegistry()

	cases := []struct {
		kind Kind
		want bool
	}{
		{KindDeleteFile, true},
		{KindExecuteTerminal, true},
		{KindOpenFile, false},
		{KindOpenApplication, false},
		{KindQuerySystemInfo, false},
	}
	for _, tc := range cases {
		desc, err := NewDescriptor(reg, tc.kind, "x", nil, nil)
		if err != nil {
			t.Fatalf("NewDescriptor(%s): %v", tc.kind, err)
		}
		if desc.RequiresConfirmation() != tc.want {
			t.Errorf("%s: RequiresConfirmation = %v, want %v", tc.kind, desc.RequiresConfirmation(), tc.want)
		}
	}
}

func TestDescriptor_ParamsAreCopied(t *testing.T) {
	reg := capability.DefaultRegistry()
	params := map[string]string{"filename": "a.txt"}

	desc, err := NewDescriptor(reg, KindOpenFile, "a.txt", params, nil)
	if err != nil {
		t.Fatal(err)
	}

	params["filename"] = "b.txt"
	if v, _ := desc.Param("filename"); v != "a.txt" {
		t.Errorf("caller mutation reached the descriptor: %q", v)
	}

	out := desc.Params()
	out["injected"] = "x"
	if _, ok := desc.Param("injected"); ok {
		t.Error("mutating Params() copy reached the descriptor")
	}
}

func TestParseKind(t *testing.T) {
	if ParseKind("open_file") != KindOpenFile {
		t.Error("known identifier failed to parse")
	}
	if ParseKind("frobnicate") != KindUnknown {
		t.Error("unknown identifier should parse to KindUnknown")
	}
}
