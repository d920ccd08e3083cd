package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/santa/internal/domainerr"
)

func TestSanitizeStripsZeroWidthAndControl(t *testing.T) {
	out, err := Sanitize("rip​grep")
	require.NoError(t, err)
	assert.Equal(t, "ripgrep", out)
}

func TestSanitizeStripsBidiOverride(t *testing.T) {
	out, err := Sanitize("‮ripgrep")
	require.NoError(t, err)
	assert.Equal(t, "ripgrep", out)
}

func TestSanitizeAllowsOrdinaryName(t *testing.T) {
	out, err := Sanitize("ripgrep")
	require.NoError(t, err)
	assert.Equal(t, "ripgrep", out)
}

func TestSanitizeAllowsScopedNames(t *testing.T) {
	out, err := Sanitize("@types/node")
	require.NoError(t, err)
	assert.Equal(t, "@types/node", out)
}

func TestSanitizeRejectsPathTraversal(t *testing.T) {
	_, err := Sanitize("../../etc/passwd")
	require.Error(t, err)
	assert.True(t, domainerr.IsSecurityError(err))
}

func TestSanitizeRejectsLeadingDash(t *testing.T) {
	_, err := Sanitize("--force")
	require.Error(t, err)
	assert.True(t, domainerr.IsSecurityError(err))
}

func TestSanitizeRejectsSemicolon(t *testing.T) {
	_, err := Sanitize("bat; rm -rf /")
	require.Error(t, err)
	assert.True(t, domainerr.IsSecurityError(err))
}

func TestSanitizeRejectsCommandSubstitution(t *testing.T) {
	_, err := Sanitize("bat$(whoami)")
	require.Error(t, err)
	assert.True(t, domainerr.IsSecurityError(err))
}

func TestSanitizeRejectsBraceExpansion(t *testing.T) {
	_, err := Sanitize("bat${IFS}rm")
	require.Error(t, err)
	assert.True(t, domainerr.IsSecurityError(err))
}

func TestSanitizeRejectsEmptyAfterStripping(t *testing.T) {
	_, err := Sanitize("​​")
	require.Error(t, err)
}
