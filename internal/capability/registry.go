package capability

// Registry is the static table mapping an action kind to the scopes it
// requires. It is the single source of truth: descriptors are validated
// against it at construction and no other component redefines it.
//
// Lookup is deliberately fail-open: an unknown action kind requires no
// extra privilege, because absence of a declared action is enforced by the
// guarded executor's dispatch whitelist, not by this table. Collapsing the
// two layers would turn a lookup miss into an executable action.
type Registry struct {
	required map[string]ScopeSet
}

// NewRegistry creates an empty registry. Most callers want DefaultRegistry.
func NewRegistry() *Registry {
	return &Registry{required: make(map[string]ScopeSet)}
}

// DefaultRegistry returns the registry covering every built-in action kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Declare("open_application", ScopeAppControl)
	r.Declare("query_system_info")
	r.Declare("open_file", ScopeFileRead)
	r.Declare("delete_file", ScopeFileDelete)
	r.Declare("open_url", ScopeBrowser)
	r.Declare("create_note", ScopeNotes)
	r.Declare("read_note", ScopeNotes)
	r.Declare("execute_terminal", ScopeTerminal)
	return r
}

// Declare registers the required scopes for an action kind.
func (r *Registry) Declare(actionKind string, scopes ...Scope) {
	r.required[actionKind] = NewScopeSet(scopes...)
}

// RequiredScopes returns the scopes required by an action kind. Total
// function: unknown kinds return the empty set.
func (r *Registry) RequiredScopes(actionKind string) ScopeSet {
	if s, ok := r.required[actionKind]; ok {
		return s.Clone()
	}
	return NewScopeSet()
}

// Known reports whether an action kind is declared.
func (r *Registry) Known(actionKind string) bool {
	_, ok := r.required[actionKind]
	return ok
}
