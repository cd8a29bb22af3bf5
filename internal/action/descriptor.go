package action

import (
	"fmt"

	"valet/internal/capability"
)

// Descriptor is the immutable record of one requested effect. Lifecycle is
// create-once, read-many, discarded after dispatch. Construction fails when
// the declared scopes disagree with the capability registry.
type Descriptor struct {
	kind       Kind
	target     string
	parameters map[string]string
	risk       RiskLevel
	required   capability.ScopeSet
}

// NewDescriptor builds a validated descriptor. The required scope set is
// taken from the registry; a caller-supplied set that disagrees with the
// registry is a construction error, never a runtime default.
func NewDescriptor(reg *capability.Registry, kind Kind, target string, params map[string]string, declared capability.ScopeSet) (*Descriptor, error) {
	if reg == nil {
		return nil, fmt.Errorf("capability registry is required")
	}
	if kind == KindUnknown {
		return nil, fmt.Errorf("unknown action kind")
	}

	required := reg.RequiredScopes(string(kind))
	if declared != nil && !required.Equal(declared) {
		return nil, fmt.Errorf("declared scopes %v disagree with registry %v for %s",
			declared.Sorted(), required.Sorted(), kind)
	}

	risk := DefaultRisk(kind)

	// Copy the parameter map so later caller mutation cannot reach in.
	paramsCopy := make(map[string]string, len(params))
	for k, v := range params {
		paramsCopy[k] = v
	}

	return &Descriptor{
		kind:       kind,
		target:     target,
		parameters: paramsCopy,
		risk:       risk,
		required:   required,
	}, nil
}

// Kind returns the action kind.
func (d *Descriptor) Kind() Kind { return d.kind }

// Target returns the opaque target label.
func (d *Descriptor) Target() string { return d.target }

// Risk returns the declared risk level.
func (d *Descriptor) Risk() RiskLevel { return d.risk }

// RequiredScopes returns a copy of the scopes this action needs.
func (d *Descriptor) RequiredScopes() capability.ScopeSet { return d.required.Clone() }

// RequiresConfirmation is derived: true iff risk is high.
func (d *Descriptor) RequiresConfirmation() bool { return d.risk == RiskHigh }

// Param returns a named parameter and whether it was set.
func (d *Descriptor) Param(key string) (string, bool) {
	v, ok := d.parameters[key]
	return v, ok
}

// Params returns a copy of the parameter map.
func (d *Descriptor) Params() map[string]string {
	out := make(map[string]string, len(d.parameters))
	for k, v := range d.parameters {
		out[k] = v
	}
	return out
}

// String renders a short human-readable form for logs and previews.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(target=%q, risk=%s)", d.kind, d.target, d.risk)
}
