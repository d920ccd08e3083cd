package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
)

func TestParseLayerBareLists(t *testing.T) {
	text := "sources =\n  = brew\n  = cargo\npackages =\n  = bat\n  = ripgrep\n"
	layer, err := ParseLayer([]byte(text), LayerUser, "test:inline")
	require.NoError(t, err)

	assert.Equal(t, []string{"brew", "cargo"}, layer.SourceOrder)
	assert.Equal(t, []string{"bat", "ripgrep"}, layer.PackageOrder)
	assert.Equal(t, pkgsource.DefaultSchemaVersion, layer.SchemaVersion)
	assert.Equal(t, LayerUser, layer.Kind)
}

func TestParseLayerSourceDefinitionTable(t *testing.T) {
	text := "sources =\n" +
		"  brew =\n" +
		"    shell_command = brew\n" +
		"    check_command = brew list\n"
	layer, err := ParseLayer([]byte(text), LayerBundled, "test:bundled")
	require.NoError(t, err)

	require.Contains(t, layer.SourceDefs, "brew")
	require.NotNil(t, layer.SourceDefs["brew"].CheckCommand)
	assert.Equal(t, "brew list", *layer.SourceDefs["brew"].CheckCommand)
	assert.Equal(t, []string{"brew"}, layer.SourceOrder)
}

func TestParseLayerRejectsNewerSchemaMajor(t *testing.T) {
	text := "schema_version = 2.0.0\npackages =\n  = bat\n"
	_, err := ParseLayer([]byte(text), LayerUser, "test:inline")
	assert.Error(t, err)
}

func TestParseLayerPackageOverride(t *testing.T) {
	text := "packages =\n  = ripgrep\nripgrep =\n  scoop = rg\n"
	layer, err := ParseLayer([]byte(text), LayerUser, "test:inline")
	require.NoError(t, err)
	require.True(t, layer.Defs.Has("ripgrep"))
}
