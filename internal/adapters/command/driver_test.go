package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/santa/internal/domainerr"
)

func TestDriverRunSucceeds(t *testing.T) {
	driver := NewDriver(NewRealRunner())

	out, err := driver.Run(context.Background(), time.Second, "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestDriverRunNonZeroExitIsCommandFailed(t *testing.T) {
	driver := NewDriver(NewRealRunner())

	_, err := driver.Run(context.Background(), time.Second, "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)

	var cfe *CommandFailedError
	require.ErrorAs(t, err, &cfe)
	assert.Equal(t, 3, cfe.Code)
	assert.Equal(t, "boom\n", cfe.Stderr)
	assert.Equal(t, domainerr.KindCommandFailed, domainerr.Category(err))
}

func TestDriverRunTimeoutKillsProcess(t *testing.T) {
	driver := NewDriver(NewRealRunner())

	_, err := driver.Run(context.Background(), 50*time.Millisecond, "sleep", "5")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindTimeout, domainerr.Category(err))
}

func TestDriverRunSpawnFailureIsIOError(t *testing.T) {
	driver := NewDriver(NewRealRunner())

	_, err := driver.Run(context.Background(), time.Second, "nonexistent-command-38120")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindIO, domainerr.Category(err))
}
