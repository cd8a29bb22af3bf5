// Package terminal turns a requested observation command into a bounded,
// non-shell execution. Validation is pure and ordered; execution runs
// [command, args...] directly with no shell interpretation, a hard timeout,
// and byte/line output caps, gated by an exact-match confirmation token.
package terminal

import "strings"

// CommandSpec is the request to run one observation command.
type CommandSpec struct {
	// Command is the binary name, no path, no shell.
	Command string

	// Args are positional arguments. Flags are not permitted.
	Args []string

	// Reason is the caller's stated purpose, echoed into previews.
	Reason string

	// ReadOnly must be true; the sandbox refuses anything else.
	ReadOnly bool
}

// Raw returns the raw concatenation of command and args. The forbidden
// token scan runs over this string before any splitting, so metacharacters
// cannot hide inside an argument.
func (s CommandSpec) Raw() string {
	if len(s.Args) == 0 {
		return s.Command
	}
	return s.Command + " " + strings.Join(s.Args, " ")
}

// OutputLimits is the declarative cap set attached to a validated command.
type OutputLimits struct {
	// MaxBytes caps captured stdout+stderr.
	MaxBytes int64

	// MaxLines caps the rendered line count.
	MaxLines int

	// TruncationNote is appended when output is cut.
	TruncationNote string
}

// ValidationResult is the immutable outcome of validating a spec.
type ValidationResult struct {
	// Valid reports whether every check passed.
	Valid bool

	// Violation names the first failed check. Empty when valid.
	Violation string

	// Detail explains the violation for the user.
	Detail string

	// Command and Args echo the validated spec.
	Command string
	Args    []string

	// Reason echoes the caller's stated purpose.
	Reason string

	// ReadOnly echoes the declared mode.
	ReadOnly bool

	// Limits are the derived output caps. Set only when valid.
	Limits OutputLimits

	// TimeoutSeconds is the fixed wall-clock limit. Set only when valid.
	TimeoutSeconds int
}

// Named violations, reported as specific constants so callers and tests can
// branch on them.
const (
	ViolationEmptyCommand   = "empty_command"
	ViolationNotReadOnly    = "not_read_only"
	ViolationForbiddenToken = "forbidden_token"
	ViolationNotAllowed     = "command_not_in_allow_list"
	ViolationFlagArgument   = "flag_argument"
)
