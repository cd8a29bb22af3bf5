package followup

import (
	"time"

	"valet/internal/action"
	"valet/internal/config"
	"valet/internal/logging"
)

// Outcome enumerates the possible results of reference resolution.
type Outcome string

const (
	// Resolved means the reference bound to an entry and the replay was
	// marked.
	Resolved Outcome = "resolved"

	// NoContext means no live entries remain after TTL purge.
	NoContext Outcome = "no_context"

	// NoReference means the utterance carried no reference marker.
	NoReference Outcome = "no_reference"

	// CrossIntentBlocked means the utterance's vocabulary conflicts with
	// the stored entry's intent class. Hard refusal regardless of
	// confidence.
	CrossIntentBlocked Outcome = "cross_intent_blocked"

	// ReplayLimited means the entry's replay budget is exhausted.
	ReplayLimited Outcome = "replay_limited"

	// DangerousBlocked means the candidate entry is dangerous-class, which
	// is never replay-eligible.
	DangerousBlocked Outcome = "dangerous_blocked"

	// LowConfidence means the reference confidence fell below the floor;
	// resolution refused before any context lookup.
	LowConfidence Outcome = "low_confidence"
)

// Resolution is the result of resolving a referential utterance.
type Resolution struct {
	Outcome Outcome

	// Entry is set only when Outcome is Resolved. Entities in it are a
	// copy; mutating them does not touch the stored entry.
	Entry *Entry
}

// Context is the bounded, TTL-evicted memory of recent successful actions.
// Newest entries first. Owned by one session; no internal locking.
type Context struct {
	cfg     config.FollowUpConfig
	entries []*Entry

	// now is a clock hook for tests.
	now func() time.Time
}

// NewContext creates an empty follow-up context with the given policy.
func NewContext(cfg config.FollowUpConfig) *Context {
	return &Context{cfg: cfg, now: time.Now}
}

// SetClock overrides the clock. Tests only.
func (c *Context) SetClock(now func() time.Time) { c.now = now }

// Record remembers a successfully executed action. Entities are filtered
// through the per-kind whitelist before storage; unfiltered data never
// enters the buffer.
func (c *Context) Record(kind action.Kind, target string, params map[string]string) {
	e := newEntry(kind, target, params, c.now())
	c.entries = append([]*Entry{e}, c.entries...)
	if len(c.entries) > c.cfg.Capacity {
		c.entries = c.entries[:c.cfg.Capacity]
	}
	logging.Followup("recorded %s (%s), %d entities, %d entries total",
		kind, e.Class, len(e.Entities), len(c.entries))
}

// Len returns the number of stored entries (before purge).
func (c *Context) Len() int { return len(c.entries) }

// Resolve resolves a referential utterance against the most recent entry.
//
// Check order: confidence floor, TTL purge, empty context, reference
// marker, intent-class conflict, dangerous class, replay budget. First
// failure wins; only a full pass marks the replay.
func (c *Context) Resolve(text string, confidence float64) Resolution {
	if confidence < c.cfg.ConfidenceFloor {
		logging.FollowupDebug("resolve refused: confidence %.2f below floor %.2f",
			confidence, c.cfg.ConfidenceFloor)
		return Resolution{Outcome: LowConfidence}
	}

	now := c.now()
	c.purge(now)

	if len(c.entries) == 0 {
		return Resolution{Outcome: NoContext}
	}

	if !hasReferenceMarker(text) {
		return Resolution{Outcome: NoReference}
	}

	candidate := c.entries[0]

	if inferred := inferClass(text); inferred != classNone && inferred != candidate.Class {
		logging.Followup("cross-intent blocked: utterance implies %s, stored entry is %s",
			inferred, candidate.Class)
		return Resolution{Outcome: CrossIntentBlocked}
	}

	if candidate.Class == ClassDangerous {
		logging.Followup("replay refused: %s is dangerous-class", candidate.Action)
		return Resolution{Outcome: DangerousBlocked}
	}

	if c.budgetExhausted(candidate, now) {
		logging.Followup("replay limited: %s at %d/%d within window",
			candidate.Action, candidate.ReplayCount, c.cfg.MaxReplays)
		return Resolution{Outcome: ReplayLimited}
	}

	c.markReplay(candidate, now)
	logging.Followup("resolved %q to %s (replay %d)", text, candidate.Action, candidate.ReplayCount)

	return Resolution{Outcome: Resolved, Entry: candidate.snapshot()}
}

// purge drops entries older than the TTL. Runs before every read.
func (c *Context) purge(now time.Time) {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if !e.expired(c.cfg.TTL.Std(), now) {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// budgetExhausted reports whether the entry has hit the replay cap within
// the sliding window. Replays older than the window no longer count.
func (c *Context) budgetExhausted(e *Entry, now time.Time) bool {
	if e.ReplayCount < c.cfg.MaxReplays {
		return false
	}
	return e.LastReplay.IsZero() || now.Sub(e.LastReplay) < c.cfg.ReplayWindow.Std()
}

// markReplay stamps the replay bookkeeping. A replay outside the window
// starts a fresh count.
func (c *Context) markReplay(e *Entry, now time.Time) {
	if !e.LastReplay.IsZero() && now.Sub(e.LastReplay) >= c.cfg.ReplayWindow.Std() {
		e.ReplayCount = 0
	}
	e.ReplayCount++
	e.LastReplay = now
}

// snapshot returns a copy safe to hand to callers.
func (e *Entry) snapshot() *Entry {
	entities := make(map[string]string, len(e.Entities))
	for k, v := range e.Entities {
		entities[k] = v
	}
	cp := *e
	cp.Entities = entities
	return &cp
}
