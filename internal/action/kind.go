// Package action defines the immutable action descriptor: one validated,
// read-many record of a requested effect. Action kinds are a closed enum so
// dispatch over them is a compile-time-checked decision rather than a
// silently-ignored string miss.
package action

// Kind identifies one action type.
type Kind string

const (
	KindUnknown         Kind = ""
	KindOpenApplication Kind = "open_application"
	KindQuerySystemInfo Kind = "query_system_info"
	KindOpenFile        Kind = "open_file"
	KindDeleteFile      Kind = "delete_file"
	KindOpenURL         Kind = "open_url"
	KindCreateNote      Kind = "create_note"
	KindReadNote        Kind = "read_note"
	KindExecuteTerminal Kind = "execute_terminal"
)

// AllKinds lists every declared action kind, for exhaustiveness checks in
// tests and for CLI help output.
var AllKinds = []Kind{
	KindOpenApplication,
	KindQuerySystemInfo,
	KindOpenFile,
	KindDeleteFile,
	KindOpenURL,
	KindCreateNote,
	KindReadNote,
	KindExecuteTerminal,
}

// ParseKind maps a string identifier to a Kind. Unknown strings map to
// KindUnknown; the caller decides whether that is an error.
func ParseKind(s string) Kind {
	for _, k := range AllKinds {
		if string(k) == s {
			return k
		}
	}
	return KindUnknown
}

// String returns the wire identifier.
func (k Kind) String() string { return string(k) }
