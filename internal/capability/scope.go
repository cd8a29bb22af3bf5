// Package capability defines the privilege model: opaque capability scopes,
// the static action-to-scope registry, and the session-scoped consent store.
// Scopes are flat string tokens. No hierarchy, no wildcards - membership is
// the only operation.
package capability

// Scope names one privileged action domain.
type Scope string

const (
	// ScopeAppControl allows launching and focusing applications.
	ScopeAppControl Scope = "app-control"

	// ScopeFileRead allows opening and reading files.
	ScopeFileRead Scope = "read-file"

	// ScopeFileDelete allows deleting files.
	ScopeFileDelete Scope = "delete-file"

	// ScopeBrowser allows opening URLs in a browser.
	ScopeBrowser Scope = "open-browser"

	// ScopeNotes allows creating and reading notes.
	ScopeNotes Scope = "manage-notes"

	// ScopeTerminal allows sandboxed terminal observation commands.
	ScopeTerminal Scope = "execute-terminal"
)

// ScopeSet is a flat set of scopes.
type ScopeSet map[Scope]struct{}

// NewScopeSet builds a set from the given scopes.
func NewScopeSet(scopes ...Scope) ScopeSet {
	s := make(ScopeSet, len(scopes))
	for _, sc := range scopes {
		s[sc] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s ScopeSet) Contains(scope Scope) bool {
	_, ok := s[scope]
	return ok
}

// Missing returns the scopes in s that are absent from granted, in
// deterministic order.
func (s ScopeSet) Missing(granted ScopeSet) []Scope {
	missing := make([]Scope, 0)
	for _, sc := range s.Sorted() {
		if !granted.Contains(sc) {
			missing = append(missing, sc)
		}
	}
	return missing
}

// Equal reports whether two sets hold exactly the same scopes.
func (s ScopeSet) Equal(other ScopeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for sc := range s {
		if !other.Contains(sc) {
			return false
		}
	}
	return true
}

// Sorted returns the scopes in lexical order.
func (s ScopeSet) Sorted() []Scope {
	out := make([]Scope, 0, len(s))
	for sc := range s {
		out = append(out, sc)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Clone returns an independent copy.
func (s ScopeSet) Clone() ScopeSet {
	out := make(ScopeSet, len(s))
	for sc := range s {
		out[sc] = struct{}{}
	}
	return out
}
