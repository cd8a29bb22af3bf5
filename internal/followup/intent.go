// Package followup lets a user say "open it again" and have it resolve to
// the last matching action without leaking parameters across unrelated
// domains. Entries are bounded, TTL-evicted, entity-filtered at write time,
// and replay-rate limited.
package followup

import (
	"strings"

	"valet/internal/action"
)

// IntentClass is the coarse category used to block replay across unrelated
// domains.
type IntentClass string

const (
	ClassSystem     IntentClass = "system"
	ClassFilesystem IntentClass = "filesystem"
	ClassDangerous  IntentClass = "dangerous"
	classNone       IntentClass = ""
)

// ClassOf returns the intent class an action kind belongs to.
func ClassOf(kind action.Kind) IntentClass {
	switch kind {
	case action.KindOpenApplication, action.KindQuerySystemInfo, action.KindOpenURL:
		return ClassSystem
	case action.KindOpenFile, action.KindDeleteFile, action.KindCreateNote, action.KindReadNote:
		return ClassFilesystem
	case action.KindExecuteTerminal:
		return ClassDangerous
	default:
		return ClassDangerous
	}
}

// Vocabulary for inferring the intent class implied by an utterance.
// Keyword heuristics only; this is not natural-language understanding.
var (
	systemWords = []string{
		"app", "application", "program", "browser", "website", "url",
		"window", "launch", "volume", "system", "tab",
	}
	filesystemWords = []string{
		"file", "files", "folder", "directory", "document", "note",
		"notes", "delete", "save", "path",
	}
	dangerousWords = []string{
		"terminal", "command", "shell", "console", "execute",
	}
)

// inferClass guesses the intent class implied by the words in text.
// Returns classNone when no domain vocabulary appears.
func inferClass(text string) IntentClass {
	lower := strings.ToLower(text)

	scores := map[IntentClass]int{}
	for _, w := range dangerousWords {
		if containsWord(lower, w) {
			scores[ClassDangerous]++
		}
	}
	for _, w := range filesystemWords {
		if containsWord(lower, w) {
			scores[ClassFilesystem]++
		}
	}
	for _, w := range systemWords {
		if containsWord(lower, w) {
			scores[ClassSystem]++
		}
	}

	// Dangerous vocabulary dominates: any hint of it classifies the
	// utterance as dangerous so it can never match a stored entry of
	// another class by accident.
	if scores[ClassDangerous] > 0 {
		return ClassDangerous
	}
	if scores[ClassFilesystem] > scores[ClassSystem] {
		return ClassFilesystem
	}
	if scores[ClassSystem] > 0 {
		return ClassSystem
	}
	return classNone
}

// referenceMarkers are the pronoun/location/action-object patterns that make
// an utterance a follow-up reference at all.
var referenceMarkers = []string{
	"it", "that", "this", "them", "again", "same", "there",
	"the file", "the app", "the one", "last one",
}

// hasReferenceMarker reports whether text refers back to a prior action.
func hasReferenceMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range referenceMarkers {
		if strings.Contains(m, " ") {
			if strings.Contains(lower, m) {
				return true
			}
		} else if containsWord(lower, m) {
			return true
		}
	}
	return false
}

// containsWord reports whether text contains w as a whole word.
func containsWord(text, w string) bool {
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if tok == w {
			return true
		}
	}
	return false
}
