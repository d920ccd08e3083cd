package config

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/felixgeelhaar/santa/internal/ccl"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// PreHookTimeout bounds a single pre-hook invocation.
const PreHookTimeout = 5 * time.Minute

// PreHooks reads the optional "pre" field of a source or package record: a
// single shell command run once, before the composed install invocations,
// per §4.G/§4.J.
func PreHooks(m *ccl.Model) (string, bool) {
	if m == nil || !m.Has("pre") {
		return "", false
	}
	s, err := m.GetStr("pre")
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// RunPreHook executes cmdStr with /bin/sh -c (or the platform's shell),
// inheriting stdout/stderr, bounded by PreHookTimeout.
func RunPreHook(ctx context.Context, shell, cmdStr, workDir string) error {
	ctx, cancel := context.WithTimeout(ctx, PreHookTimeout)
	defer cancel()

	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", cmdStr)
	cmd.Dir = workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return domainerr.New(domainerr.KindTimeout, "pre hook timed out").WithContext(cmdStr)
		}
		return domainerr.New(domainerr.KindCommandFailed, "pre hook failed").
			WithContext(cmdStr).WithUnderlying(err)
	}
	return nil
}
