package terminal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"valet/internal/logging"
)

// Aborter reports whether the owning session has requested abort. The
// runner refuses to start anything once it has.
type Aborter interface {
	Aborted() bool
}

// AuditEventType categorizes runner audit events.
type AuditEventType string

const (
	AuditStart    AuditEventType = "start"
	AuditComplete AuditEventType = "complete"
	AuditKilled   AuditEventType = "killed"
	AuditBlocked  AuditEventType = "blocked"
)

// AuditEvent is emitted to the audit callback around each execution.
type AuditEvent struct {
	Type      AuditEventType
	Timestamp time.Time
	Command   string
	Args      []string
	Detail    string
}

// RunResult is the outcome of executing a validated command.
type RunResult struct {
	// Output is captured stdout, truncated to the byte and line caps.
	Output string

	// Stderr is captured stderr, truncated to the byte cap.
	Stderr string

	// ExitCode is the process exit code, -1 when unavailable.
	ExitCode int

	// TimedOut reports the process hit the wall-clock limit and was
	// killed rather than waited on.
	TimedOut bool

	// Truncated reports output was cut to fit the caps.
	Truncated bool

	// Duration is how long the process ran.
	Duration time.Duration
}

// Runner executes validated commands. It is a separate component from the
// validator: it only ever runs [command, args...] with no shell
// interpretation.
type Runner struct {
	validator *Validator

	// auditCallback receives execution events, when set.
	auditCallback func(AuditEvent)
}

// NewRunner creates a runner bound to a validator.
func NewRunner(v *Validator) *Runner {
	return &Runner{validator: v}
}

// SetAuditCallback registers an observer for execution events.
func (r *Runner) SetAuditCallback(cb func(AuditEvent)) { r.auditCallback = cb }

func (r *Runner) emit(ev AuditEvent) {
	if r.auditCallback != nil {
		ev.Timestamp = time.Now()
		r.auditCallback(ev)
	}
}

// ConfirmAndRun gates execution on the exact confirmation token, then runs
// the validated command. The token check happens here, not in the caller,
// so no path can reach the process boundary without it.
func (r *Runner) ConfirmAndRun(ctx context.Context, res ValidationResult, token string, session Aborter) (*RunResult, error) {
	if !res.Valid {
		r.emit(AuditEvent{Type: AuditBlocked, Command: res.Command, Args: res.Args, Detail: res.Violation})
		return nil, fmt.Errorf("refusing to run invalid command (%s)", res.Violation)
	}
	if !r.validator.ConfirmTokenMatches(token) {
		r.emit(AuditEvent{Type: AuditBlocked, Command: res.Command, Args: res.Args, Detail: "confirmation token mismatch"})
		return nil, fmt.Errorf("confirmation token did not match")
	}
	if session != nil && session.Aborted() {
		r.emit(AuditEvent{Type: AuditBlocked, Command: res.Command, Args: res.Args, Detail: "session aborted"})
		return nil, fmt.Errorf("session has requested abort")
	}

	return r.run(ctx, res)
}

// run executes the command with the validated limits.
func (r *Runner) run(ctx context.Context, res ValidationResult) (*RunResult, error) {
	timeout := time.Duration(res.TimeoutSeconds) * time.Second
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logging.Terminal("running %s %v (timeout=%s)", res.Command, res.Args, timeout)
	r.emit(AuditEvent{Type: AuditStart, Command: res.Command, Args: res.Args})

	// Direct argv execution. No shell is ever involved.
	cmd := exec.CommandContext(execCtx, res.Command, res.Args...)
	// Don't hang on lingering pipe readers after the kill.
	cmd.WaitDelay = 2 * time.Second

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := &limitedWriter{w: &stdoutBuf, max: res.Limits.MaxBytes}
	stderr := &limitedWriter{w: &stderrBuf, max: res.Limits.MaxBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	started := time.Now()
	err := cmd.Run()
	duration := time.Since(started)

	result := &RunResult{
		ExitCode: -1,
		Duration: duration,
	}
	result.Output, result.Truncated = capLines(stdoutBuf.String(), res.Limits)
	result.Stderr = stderrBuf.String()
	if stdout.truncated || stderr.truncated {
		result.Truncated = true
	}
	if result.Truncated {
		result.Output += "\n" + res.Limits.TruncationNote
	}

	if execCtx.Err() == context.DeadlineExceeded {
		// Killed, not waited on further: execution is failed and abandoned.
		result.TimedOut = true
		r.emit(AuditEvent{Type: AuditKilled, Command: res.Command, Args: res.Args,
			Detail: fmt.Sprintf("timeout after %s", timeout)})
		logging.TerminalWarn("%s killed after %s", res.Command, timeout)
		return result, fmt.Errorf("command timed out after %s", timeout)
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			r.emit(AuditEvent{Type: AuditComplete, Command: res.Command, Args: res.Args,
				Detail: fmt.Sprintf("exit=%d", result.ExitCode)})
			return result, nil
		}
		r.emit(AuditEvent{Type: AuditBlocked, Command: res.Command, Args: res.Args, Detail: err.Error()})
		return result, fmt.Errorf("command failed to start: %w", err)
	}

	result.ExitCode = 0
	r.emit(AuditEvent{Type: AuditComplete, Command: res.Command, Args: res.Args, Detail: "exit=0"})
	logging.Terminal("%s completed in %s (%d bytes)", res.Command, duration, len(result.Output))
	return result, nil
}

// capLines truncates output to the line cap.
func capLines(out string, limits OutputLimits) (string, bool) {
	lines := strings.Split(out, "\n")
	if len(lines) <= limits.MaxLines {
		return out, false
	}
	return strings.Join(lines[:limits.MaxLines], "\n"), true
}

// limitedWriter caps total bytes written, discarding the rest.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		return n, nil
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
