package followup

import (
	"time"

	"valet/internal/action"
)

// entityWhitelist names the parameter keys that may be remembered per action
// kind. Filtering happens at write time: a browser follow-up can never carry
// a terminal command string because the command key never survives storage.
var entityWhitelist = map[action.Kind][]string{
	action.KindOpenApplication: {"app_name", "target"},
	action.KindQuerySystemInfo: {"query", "target"},
	action.KindOpenFile:        {"filename", "full_path", "target"},
	action.KindDeleteFile:      {"filename", "full_path", "target"},
	action.KindOpenURL:         {"url", "target"},
	action.KindCreateNote:      {"title", "target"},
	action.KindReadNote:        {"title", "target"},
	// Terminal actions remember nothing: dangerous-class entries are never
	// replay-eligible, so no entity may survive.
	action.KindExecuteTerminal: {},
}

// Entry is one remembered successful action. Created only on successful
// execution; mutated only by replay bookkeeping.
type Entry struct {
	// Action is the kind that executed.
	Action action.Kind

	// Class is the intent class stored with the entry.
	Class IntentClass

	// Entities is the whitelist-filtered parameter map.
	Entities map[string]string

	// Timestamp is when the action executed.
	Timestamp time.Time

	// ReplayCount is how many times this entry has been replayed.
	ReplayCount int

	// LastReplay is when the most recent replay happened.
	LastReplay time.Time
}

// newEntry builds a filtered entry from an executed descriptor.
func newEntry(kind action.Kind, target string, params map[string]string, now time.Time) *Entry {
	entities := make(map[string]string)
	for _, key := range entityWhitelist[kind] {
		if key == "target" {
			if target != "" {
				entities["target"] = target
			}
			continue
		}
		if v, ok := params[key]; ok && v != "" {
			entities[key] = v
		}
	}

	return &Entry{
		Action:    kind,
		Class:     ClassOf(kind),
		Entities:  entities,
		Timestamp: now,
	}
}

// expired reports whether the entry fell out of the TTL at time now.
func (e *Entry) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.Timestamp) > ttl
}
