package action

// RiskLevel grades the declared blast radius of an action.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether the level is one of the declared constants.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// DefaultRisk returns the baked-in risk level for an action kind.
func DefaultRisk(kind Kind) RiskLevel {
	switch kind {
	case KindDeleteFile, KindExecuteTerminal:
		return RiskHigh
	case KindOpenFile, KindOpenURL:
		return RiskMedium
	case KindOpenApplication, KindQuerySystemInfo, KindCreateNote, KindReadNote:
		return RiskLow
	default:
		return RiskHigh
	}
}
