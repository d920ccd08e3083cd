package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/santa/internal/ccl"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

func TestPreHooksReadsFieldWhenPresent(t *testing.T) {
	m, err := ccl.ParseModel("pre = echo hello\n", ccl.DefaultParserOptions())
	require.NoError(t, err)

	cmd, ok := PreHooks(m)
	assert.True(t, ok)
	assert.Equal(t, "echo hello", cmd)
}

func TestPreHooksAbsent(t *testing.T) {
	m, err := ccl.ParseModel("shell_command = brew\n", ccl.DefaultParserOptions())
	require.NoError(t, err)

	_, ok := PreHooks(m)
	assert.False(t, ok)
}

func TestRunPreHookSucceeds(t *testing.T) {
	err := RunPreHook(t.Context(), "", "exit 0", t.TempDir())
	assert.NoError(t, err)
}

func TestRunPreHookFailureIsCommandFailed(t *testing.T) {
	err := RunPreHook(t.Context(), "", "exit 7", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, domainerr.KindCommandFailed, domainerr.Category(err))
}
