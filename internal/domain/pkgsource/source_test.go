package pkgsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/santa/internal/ccl"
)

func TestParseSourceTable(t *testing.T) {
	text := "brew =\n" +
		"  emoji = 🍺\n" +
		"  shell_command = brew\n" +
		"  install_command = brew install {package}\n" +
		"  check_command = brew list\n" +
		"cargo =\n" +
		"  shell_command = cargo\n" +
		"  check_command = cargo install --list\n"

	m, err := ccl.ParseModel(text, ccl.DefaultParserOptions())
	require.NoError(t, err)

	table, err := ParseSourceTable(m)
	require.NoError(t, err)
	require.Contains(t, table, "brew")
	require.Contains(t, table, "cargo")
	assert.Equal(t, "brew install {package}", table["brew"].InstallCommand)
	assert.Equal(t, "🍺", table["brew"].Emoji)
}

func TestParsePlatformOverrides(t *testing.T) {
	text := "overrides =\n" +
		"    =\n" +
		"      platform =\n" +
		"        os = windows\n" +
		"      install_command = scoop install {package}\n"

	m, err := ccl.ParseModel(text, ccl.DefaultParserOptions())
	require.NoError(t, err)

	ovChild, err := m.Get("overrides")
	require.NoError(t, err)

	overrides, err := ParsePlatformOverrides(ovChild)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "windows", overrides[0].Match.OS)
	require.NotNil(t, overrides[0].InstallCommand)
	assert.Equal(t, "scoop install {package}", *overrides[0].InstallCommand)
}

func TestNewSourceRequiresShellAndCheckCommand(t *testing.T) {
	_, err := NewSource("brew", "", "", "brew install", "", "", "", nil)
	assert.Error(t, err)

	_, err = NewSource("brew", "", "brew", "brew install", "", "", "", nil)
	assert.Error(t, err)
}

func TestPlatformOverrideResolution(t *testing.T) {
	alt := "scoop install {package}"
	src := Source{
		Name:         "scoop",
		ShellCommand: "scoop",
		CheckCommand: "scoop list",
		Overrides: []PlatformOverride{
			{Match: PlatformMatch{OS: "plan9"}, InstallCommand: &alt},
		},
	}
	resolved := src.Resolved("")
	assert.Equal(t, "", resolved.InstallCommand) // plan9 override doesn't match this test's GOOS
}
