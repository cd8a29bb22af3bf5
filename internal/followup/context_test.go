package followup

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"valet/internal/action"
	"valet/internal/config"
)

func testContext(t *testing.T) (*Context, *time.Time) {
	t.Helper()
	ctx := NewContext(config.Default().FollowUp)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ctx.SetClock(func() time.Time { return now })
	return ctx, &now
}

func TestResolve_HappyPath(t *testing.T) {
	ctx, _ := testContext(t)
	ctx.Record(action.KindOpenApplication, "calculator", map[string]string{"app_name": "calculator"})

	res := ctx.Resolve("open it again", 0.9)
	if res.Outcome != Resolved {
		t.Fatalf("outcome = %s, want resolved", res.Outcome)
	}
	if res.Entry.Action != action.KindOpenApplication {
		t.Errorf("entry action = %s", res.Entry.Action)
	}
	if res.Entry.Entities["app_name"] != "calculator" {
		t.Errorf("entities = %v", res.Entry.Entities)
	}
}

func TestResolve_ConfidenceFloorBeforeAnyLookup(t *testing.T) {
	ctx, _ := testContext(t)
	ctx.Record(action.KindOpenApplication, "calculator", nil)

	res := ctx.Resolve("open it again", 0.3)
	if res.Outcome != LowConfidence {
		t.Fatalf("outcome = %s, want low_confidence", res.Outcome)
	}
	if res.Entry != nil {
		t.Error("low-confidence refusal must not leak an entry")
	}
}

func TestResolve_EmptyContext(t *testing.T) {
	ctx, _ := testContext(t)
	if res := ctx.Resolve("do it again", 0.9); res.Outcome != NoContext {
		t.Errorf("outcome = %s, want no_context", res.Outcome)
	}
}

func TestResolve_NoReferenceMarker(t *testing.T) {
	ctx, _ := testContext(t)
	ctx.Record(action.KindOpenApplication, "calculator", nil)

	if res := ctx.Resolve("what time is Paris in", 0.9); res.Outcome != NoReference {
		t.Errorf("outcome = %s, want no_reference", res.Outcome)
	}
}

func TestResolve_TTLPurge(t *testing.T) {
	ctx, now := testContext(t)
	ctx.Record(action.KindOpenApplication, "calculator", nil)

	*now = now.Add(11 * time.Minute)
	if res := ctx.Resolve("open it again", 0.9); res.Outcome != NoContext {
		t.Errorf("outcome after TTL = %s, want no_context", res.Outcome)
	}
	if ctx.Len() != 0 {
		t.Errorf("expired entry survived purge, len = %d", ctx.Len())
	}
}

func TestResolve_CrossIntentBlocked(t *testing.T) {
	ctx, _ := testContext(t)
	// Stored entry is system-class; the utterance carries filesystem
	// vocabulary plus a reference marker.
	ctx.Record(action.KindQuerySystemInfo, "battery", map[string]string{"query": "battery"})

	res := ctx.Resolve("delete that file again", 0.9)
	if res.Outcome != CrossIntentBlocked {
		t.Fatalf("outcome = %s, want cross_intent_blocked", res.Outcome)
	}
}

func TestResolve_MatchingIntentClassPasses(t *testing.T) {
	ctx, _ := testContext(t)
	ctx.Record(action.KindOpenFile, "notes.txt", map[string]string{"filename": "notes.txt"})

	res := ctx.Resolve("open that file again", 0.9)
	if res.Outcome != Resolved {
		t.Fatalf("outcome = %s, want resolved", res.Outcome)
	}
}

func TestResolve_DangerousNeverReplayable(t *testing.T) {
	ctx, _ := testContext(t)
	ctx.Record(action.KindExecuteTerminal, "ls", map[string]string{"command": "ls"})

	res := ctx.Resolve("run it again", 0.99)
	if res.Outcome != DangerousBlocked {
		t.Fatalf("outcome = %s, want dangerous_blocked", res.Outcome)
	}
}

func TestResolve_ReplayBudget(t *testing.T) {
	ctx, now := testContext(t)
	ctx.Record(action.KindOpenApplication, "calculator", nil)

	// Burn the budget inside the window.
	for i := 0; i < 3; i++ {
		*now = now.Add(2 * time.Second)
		if res := ctx.Resolve("open it again", 0.9); res.Outcome != Resolved {
			t.Fatalf("replay %d: outcome = %s", i+1, res.Outcome)
		}
	}

	*now = now.Add(2 * time.Second)
	if res := ctx.Resolve("open it again", 0.9); res.Outcome != ReplayLimited {
		t.Fatalf("fourth replay in window: outcome = %s, want replay_limited", res.Outcome)
	}

	// Once the window slides past, the budget resets.
	*now = now.Add(31 * time.Second)
	if res := ctx.Resolve("open it again", 0.9); res.Outcome != Resolved {
		t.Errorf("replay outside window: outcome = %s, want resolved", res.Outcome)
	}
}

func TestRecord_EntityIsolation(t *testing.T) {
	ctx, _ := testContext(t)
	// Hostile parameters that must never survive the write-time filter.
	ctx.Record(action.KindOpenFile, "notes.txt", map[string]string{
		"filename": "notes.txt",
		"url":      "http://evil.example",
		"command":  "rm -rf /",
	})

	res := ctx.Resolve("open that file again", 0.9)
	if res.Outcome != Resolved {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	want := map[string]string{
		"filename": "notes.txt",
		"target":   "notes.txt",
	}
	if diff := cmp.Diff(want, res.Entry.Entities); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}
}

func TestRecord_CapacityBound(t *testing.T) {
	ctx, _ := testContext(t)
	for i := 0; i < 15; i++ {
		ctx.Record(action.KindOpenApplication, "app", nil)
	}
	if ctx.Len() != 10 {
		t.Errorf("len = %d, want capacity 10", ctx.Len())
	}
}

func TestResolve_SnapshotIsACopy(t *testing.T) {
	ctx, _ := testContext(t)
	ctx.Record(action.KindOpenApplication, "calculator", map[string]string{"app_name": "calculator"})

	res := ctx.Resolve("open it again", 0.9)
	res.Entry.Entities["app_name"] = "tampered"

	again := ctx.Resolve("open it again", 0.9)
	if again.Entry.Entities["app_name"] != "calculator" {
		t.Error("mutating a resolved entry reached stored state")
	}
}

func TestInferClass(t *testing.T) {
	cases := []struct {
		text string
		want IntentClass
	}{
		{"open that file again", ClassFilesystem},
		{"launch the app again", ClassSystem},
		{"run that command again", ClassDangerous},
		{"do it again", classNone},
		{"delete it in the terminal", ClassDangerous},
	}
	for _, tc := range cases {
		if got := inferClass(tc.text); got != tc.want {
			t.Errorf("inferClass(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}
