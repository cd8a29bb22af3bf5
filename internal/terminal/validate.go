package terminal

import (
	"fmt"
	"strings"

	"valet/internal/config"
	"valet/internal/logging"
)

// forbiddenTokens are scanned on the raw command string before any
// splitting: shell metacharacters, privilege escalation binaries, and
// destructive utilities. Substring match for metacharacters, word match for
// binaries.
var (
	forbiddenSubstrings = []string{
		";", "&", "|", "$", "`", ">", "<", "(", ")", "{", "}",
		"\\", "\n", "\r", "*", "?", "~", "../",
	}
	forbiddenWords = []string{
		"sudo", "su", "doas", "pkexec",
		"rm", "rmdir", "dd", "mkfs", "shred", "truncate",
		"mv", "chmod", "chown", "kill", "killall",
		"shutdown", "reboot", "halt", "poweroff",
		"sh", "bash", "zsh", "fish", "eval", "exec",
	}
)

// Validator validates command specs against the sandbox policy. Pure: no
// execution, no I/O.
type Validator struct {
	cfg     config.TerminalConfig
	allowed map[string]struct{}
}

// NewValidator creates a validator from the terminal policy.
func NewValidator(cfg config.TerminalConfig) *Validator {
	allowed := make(map[string]struct{}, len(cfg.AllowedCommands))
	for _, c := range cfg.AllowedCommands {
		allowed[c] = struct{}{}
	}
	return &Validator{cfg: cfg, allowed: allowed}
}

// Validate runs the ordered check chain. First failure wins.
func (v *Validator) Validate(spec CommandSpec) ValidationResult {
	fail := func(violation, detail string) ValidationResult {
		logging.TerminalWarn("validation failed (%s): %s", violation, detail)
		return ValidationResult{
			Valid:     false,
			Violation: violation,
			Detail:    detail,
			Command:   spec.Command,
			Args:      append([]string(nil), spec.Args...),
			Reason:    spec.Reason,
			ReadOnly:  spec.ReadOnly,
		}
	}

	command := strings.TrimSpace(spec.Command)
	if command == "" {
		return fail(ViolationEmptyCommand, "no command given")
	}

	if !spec.ReadOnly {
		return fail(ViolationNotReadOnly, "only read-only observation commands are accepted")
	}

	// Raw-string scan before any splitting.
	raw := spec.Raw()
	for _, tok := range forbiddenSubstrings {
		if strings.Contains(raw, tok) {
			return fail(ViolationForbiddenToken, fmt.Sprintf("forbidden token %q in %q", tok, raw))
		}
	}
	for _, word := range forbiddenWords {
		for _, field := range strings.Fields(raw) {
			if field == word {
				return fail(ViolationForbiddenToken, fmt.Sprintf("forbidden command word %q", word))
			}
		}
	}

	if _, ok := v.allowed[command]; !ok {
		return fail(ViolationNotAllowed, fmt.Sprintf("%q is not in the allow-list", command))
	}

	// No switches at all: an argument may not start with a flag marker.
	for _, arg := range spec.Args {
		if strings.HasPrefix(arg, "-") {
			return fail(ViolationFlagArgument, fmt.Sprintf("flag arguments are not permitted: %q", arg))
		}
	}

	logging.Terminal("validated %q (%d args)", command, len(spec.Args))
	return ValidationResult{
		Valid:    true,
		Command:  command,
		Args:     append([]string(nil), spec.Args...),
		Reason:   spec.Reason,
		ReadOnly: spec.ReadOnly,
		Limits: OutputLimits{
			MaxBytes:       v.cfg.MaxOutputBytes,
			MaxLines:       v.cfg.MaxOutputLines,
			TruncationNote: "...[output truncated]",
		},
		TimeoutSeconds: int(v.cfg.Timeout.Std().Seconds()),
	}
}

// Preview renders the human-readable dry-run description shown before the
// confirmation token is requested.
func (v *Validator) Preview(res ValidationResult) string {
	if !res.Valid {
		return fmt.Sprintf("REFUSED (%s): %s", res.Violation, res.Detail)
	}
	cmd := res.Command
	if len(res.Args) > 0 {
		cmd += " " + strings.Join(res.Args, " ")
	}
	reason := res.Reason
	if reason == "" {
		reason = "(none given)"
	}
	return fmt.Sprintf(
		"Would run: %s\n  reason: %s\n  timeout: %ds\n  output cap: %d bytes / %d lines\n  no shell, no flags, direct execution\nType %q to proceed.",
		cmd, reason, res.TimeoutSeconds, res.Limits.MaxBytes, res.Limits.MaxLines, v.cfg.ConfirmToken)
}

// ConfirmTokenMatches checks the exact-match confirmation token. Matching
// is case-sensitive and accepts nothing else - not "yes", not "YES ",
// nothing but the configured token.
func (v *Validator) ConfirmTokenMatches(token string) bool {
	return token == v.cfg.ConfirmToken
}
