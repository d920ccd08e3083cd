package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLayer(t *testing.T, text string, kind LayerKind, provenance string) Layer {
	t.Helper()
	layer, err := ParseLayer([]byte(text), kind, provenance)
	require.NoError(t, err)
	return *layer
}

func TestMergeSourcesAndPackagesAcrossLayers(t *testing.T) {
	bundled := mustLayer(t,
		"sources =\n  brew =\n    shell_command = brew\n    check_command = brew list\n"+
			"  cargo =\n    shell_command = cargo\n    check_command = cargo install --list\n"+
			"packages =\n  = bat\n", LayerBundled, "bundled")
	user := mustLayer(t, "packages =\n  = ripgrep\nripgrep =\n  scoop = rg\n", LayerUser, "user")

	resolved, err := NewMerger().Merge([]Layer{bundled, user})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"brew", "cargo"}, resolved.SourceOrder)
	assert.ElementsMatch(t, []string{"bat", "ripgrep"}, resolved.PackageOrder)
	assert.Equal(t, "rg", resolved.Packages["ripgrep"].NameFor("scoop"))
	assert.Equal(t, "user", resolved.Provenance("packages.ripgrep"))
}

func TestMergeLaterLayerReordersSources(t *testing.T) {
	bundled := mustLayer(t,
		"sources =\n  brew =\n    shell_command = brew\n    check_command = brew list\n"+
			"  cargo =\n    shell_command = cargo\n    check_command = cargo install --list\n", LayerBundled, "bundled")
	project := mustLayer(t, "sources =\n  = cargo\n  = brew\n", LayerProject, "project")

	resolved, err := NewMerger().Merge([]Layer{bundled, project})
	require.NoError(t, err)
	assert.Equal(t, []string{"cargo", "brew"}, resolved.SourceOrder)
}

func TestMergeUnknownSourceInOrderingWarns(t *testing.T) {
	bundled := mustLayer(t, "sources =\n  brew =\n    shell_command = brew\n    check_command = brew list\n", LayerBundled, "bundled")
	project := mustLayer(t, "sources =\n  = brew\n  = nix\n", LayerProject, "project")

	resolved, err := NewMerger().Merge([]Layer{bundled, project})
	require.NoError(t, err)
	assert.NotEmpty(t, resolved.Warnings)
}

func TestMergeEmptySourcesIsInvalid(t *testing.T) {
	_, err := NewMerger().Merge(nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestMergeLaterLayerOverridesSourceField(t *testing.T) {
	bundled := mustLayer(t, "sources =\n  brew =\n    shell_command = brew\n    install_command = brew install {package}\n    check_command = brew list\n", LayerBundled, "bundled")
	user := mustLayer(t, "sources =\n  brew =\n    install_command = brew install --quiet {package}\n", LayerUser, "user")

	resolved, err := NewMerger().Merge([]Layer{bundled, user})
	require.NoError(t, err)
	assert.Equal(t, "brew install --quiet {package}", resolved.Sources["brew"].InstallCommand)
	assert.Equal(t, "user", resolved.Provenance("sources.brew.install_command"))
}
