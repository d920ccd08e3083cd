package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportTOML(t *testing.T) {
	text := `
sources = ["brew", "cargo"]
packages = ["bat", "ripgrep"]

[override.ripgrep]
scoop = "rg"
`
	m, err := ImportTOML([]byte(text))
	require.NoError(t, err)

	sourcesChild, err := m.Get("sources")
	require.NoError(t, err)
	list, err := sourcesChild.AsList()
	require.NoError(t, err)
	assert.Equal(t, []string{"brew", "cargo"}, list)

	require.True(t, m.Has("ripgrep"))
}

func TestImportINI(t *testing.T) {
	text := "[sources]\nbrew = 1\ncargo = 1\n\n[packages]\nbat = 1\n"
	m, err := ImportINI([]byte(text))
	require.NoError(t, err)

	sourcesChild, err := m.Get("sources")
	require.NoError(t, err)
	list, err := sourcesChild.AsList()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"brew", "cargo"}, list)
}
