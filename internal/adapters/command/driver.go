package command

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/santa/internal/domainerr"
	"github.com/felixgeelhaar/santa/internal/ports"
)

// CommandFailedError is a structured, non-zero-exit process failure: the
// command that ran, its exit code, and the captured stderr. It unwraps to
// a domainerr.Error of KindCommandFailed so domainerr.Category/IsRetryable
// classify it uniformly with every other error in the core.
type CommandFailedError struct {
	Cmd    string
	Code   int
	Stderr string
	cause  *domainerr.Error
}

func newCommandFailedError(cmd string, code int, stderr string) *CommandFailedError {
	return &CommandFailedError{
		Cmd:    cmd,
		Code:   code,
		Stderr: stderr,
		cause: domainerr.New(domainerr.KindCommandFailed, "command exited with a non-zero status").
			WithContext(cmd),
	}
}

// Error implements the error interface.
func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("%s (exit %d): %s", e.cause.Error(), e.Code, e.Stderr)
}

// Unwrap exposes the wrapped domainerr.Error for errors.Is/As and
// domainerr.Category.
func (e *CommandFailedError) Unwrap() error { return e.cause }

// Driver spawns a subprocess against an explicit argv (never through an
// intermediate shell) with a deadline, per §4.K: deadline expiry kills the
// process and fails with Timeout; a non-zero exit fails with
// CommandFailedError; stdout is returned on success.
type Driver struct {
	runner ports.CommandRunner
}

// NewDriver wraps runner with deadline enforcement and error classification.
func NewDriver(runner ports.CommandRunner) *Driver {
	return &Driver{runner: runner}
}

// Run executes command with args, bounded by timeout.
func (d *Driver) Run(ctx context.Context, timeout time.Duration, command string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := d.runner.Run(ctx, command, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", domainerr.New(domainerr.KindTimeout, "command timed out").WithContext(command)
		}
		return "", domainerr.New(domainerr.KindIO, "failed to spawn command").WithContext(command).WithUnderlying(err)
	}

	if ctx.Err() == context.DeadlineExceeded {
		return "", domainerr.New(domainerr.KindTimeout, "command timed out").WithContext(command)
	}

	if !result.Success() {
		return "", newCommandFailedError(command, result.ExitCode, result.Stderr)
	}

	return result.Stdout, nil
}
