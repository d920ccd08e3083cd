package pkgsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/santa/internal/ccl"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

func TestReadSchemaVersionDefault(t *testing.T) {
	m, err := ccl.ParseModel("sources =\n  = brew\n", ccl.DefaultParserOptions())
	require.NoError(t, err)
	assert.Equal(t, DefaultSchemaVersion, ReadSchemaVersion(m))
}

func TestReadSchemaVersionExplicit(t *testing.T) {
	m, err := ccl.ParseModel("schema_version = 1.2.0\n", ccl.DefaultParserOptions())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", ReadSchemaVersion(m))
}

func TestCheckSchemaVersionAcceptsSameMajor(t *testing.T) {
	assert.NoError(t, CheckSchemaVersion("1.9.3"))
	assert.NoError(t, CheckSchemaVersion("v1.0.0"))
}

func TestCheckSchemaVersionRejectsNewerMajor(t *testing.T) {
	err := CheckSchemaVersion("2.0.0")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindConfig, domainerr.Category(err))
}

func TestCheckSchemaVersionRejectsInvalid(t *testing.T) {
	err := CheckSchemaVersion("not-a-version")
	assert.Error(t, err)
}
