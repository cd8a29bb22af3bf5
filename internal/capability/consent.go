package capability

// ConsentStore holds the scopes granted to the current session. It is the
// only place permission state is mutated, is owned by exactly one session,
// and is discarded with it - grants never survive a restart.
type ConsentStore struct {
	granted ScopeSet
}

// NewConsentStore creates an empty consent store (nothing granted).
func NewConsentStore() *ConsentStore {
	return &ConsentStore{granted: NewScopeSet()}
}

// Grant adds a scope to the granted set.
func (c *ConsentStore) Grant(scope Scope) {
	c.granted[scope] = struct{}{}
}

// Revoke removes a scope from the granted set.
func (c *ConsentStore) Revoke(scope Scope) {
	delete(c.granted, scope)
}

// Has reports whether a scope has been granted.
func (c *ConsentStore) Has(scope Scope) bool {
	return c.granted.Contains(scope)
}

// Granted returns a snapshot of the granted scopes.
func (c *ConsentStore) Granted() ScopeSet {
	return c.granted.Clone()
}

// Clear revokes everything. Called on session end.
func (c *ConsentStore) Clear() {
	c.granted = NewScopeSet()
}
