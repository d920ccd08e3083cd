package ccl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsBoolLenientAcceptsAllSpellings(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want bool
	}{
		{"true", true}, {"TRUE", true}, {"yes", true}, {"on", true}, {"1", true},
		{"false", false}, {"FALSE", false}, {"no", false}, {"off", false}, {"0", false},
	} {
		m, err := ParseModel("enabled = "+tt.in+"\n", DefaultParserOptions())
		require.NoError(t, err)
		field, err := m.Get("enabled")
		require.NoError(t, err)

		got, err := field.AsBool()
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestAsBoolStrictRejectsLenientSpellings(t *testing.T) {
	opts := DefaultParserOptions()
	opts.BoolStrictness = BoolStrict

	for _, in := range []string{"yes", "no", "on", "off", "1", "0"} {
		m, err := ParseModel("enabled = "+in+"\n", opts)
		require.NoError(t, err)
		field, err := m.Get("enabled")
		require.NoError(t, err)

		_, err = field.AsBool()
		assert.ErrorIs(t, err, ErrNotABool, "input %q should be rejected in strict mode", in)
	}
}

func TestAsBoolStrictAcceptsTrueFalse(t *testing.T) {
	opts := DefaultParserOptions()
	opts.BoolStrictness = BoolStrict

	m, err := ParseModel("enabled = true\ndisabled = false\n", opts)
	require.NoError(t, err)

	enabled, err := m.Get("enabled")
	require.NoError(t, err)
	got, err := enabled.AsBool()
	require.NoError(t, err)
	assert.True(t, got)

	disabled, err := m.Get("disabled")
	require.NoError(t, err)
	got, err = disabled.AsBool()
	require.NoError(t, err)
	assert.False(t, got)
}
