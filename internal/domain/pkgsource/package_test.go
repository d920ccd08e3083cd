package pkgsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/santa/internal/ccl"
)

func TestLoadPackagesBareName(t *testing.T) {
	pkgs, err := LoadPackages([]string{"bat", "ripgrep"}, nil)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.True(t, pkgs["bat"].InstallableFrom("brew"))
	assert.Equal(t, "bat", pkgs["bat"].NameFor("brew"))
}

func TestLoadPackagesWithSourceOverride(t *testing.T) {
	text := "ripgrep =\n  scoop = rg\n"
	defs, err := ccl.ParseModel(text, ccl.DefaultParserOptions())
	require.NoError(t, err)

	pkgs, err := LoadPackages([]string{"ripgrep"}, defs)
	require.NoError(t, err)

	rg := pkgs["ripgrep"]
	assert.Equal(t, "rg", rg.NameFor("scoop"))
	assert.Equal(t, "ripgrep", rg.NameFor("brew"))
	assert.True(t, rg.InstallableFrom("scoop"))
	assert.False(t, rg.InstallableFrom("apt"))
}

func TestLoadPackagesWithUnderscoreSources(t *testing.T) {
	text := "git-delta =\n  scoop = delta\n  _sources =\n    = cargo\n    = apt\n"
	defs, err := ccl.ParseModel(text, ccl.DefaultParserOptions())
	require.NoError(t, err)

	pkgs, err := LoadPackages([]string{"git-delta"}, defs)
	require.NoError(t, err)

	delta := pkgs["git-delta"]
	assert.True(t, delta.InstallableFrom("scoop"))
	assert.True(t, delta.InstallableFrom("cargo"))
	assert.True(t, delta.InstallableFrom("apt"))
	assert.False(t, delta.InstallableFrom("nix"))
	assert.Equal(t, "delta", delta.NameFor("scoop"))
	assert.Equal(t, "git-delta", delta.NameFor("cargo"))
}
