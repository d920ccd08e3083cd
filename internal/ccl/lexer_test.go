package ccl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleEntry(t *testing.T) {
	entries, err := Parse("name = ripgrep\n", DefaultParserOptions())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "name", entries[0].Key)
	assert.Equal(t, "ripgrep", entries[0].Value)
}

func TestParseMultilineContinuation(t *testing.T) {
	text := "description =\n  line one\n  line two\n"
	entries, err := Parse(text, DefaultParserOptions())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "description", entries[0].Key)
	assert.Equal(t, "\n  line one\n  line two", entries[0].Value)
}

func TestParseBareListSugar(t *testing.T) {
	text := "servers =\n  = web1\n  = web2\n"
	entries, err := Parse(text, DefaultParserOptions())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "servers", entries[0].Key)
	assert.Equal(t, "\n  = web1\n  = web2", entries[0].Value)
}

func TestParseComment(t *testing.T) {
	text := "/ this is a comment\nname = ripgrep\n"
	entries, err := Parse(text, DefaultParserOptions())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsComment())
	assert.False(t, entries[1].IsComment())
}

func TestParseRejectsWhitespaceOnlyKey(t *testing.T) {
	_, err := Parse("   = value\n", DefaultParserOptions())
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParseEmptyKeyAtLineStartIsValid(t *testing.T) {
	entries, err := Parse("= value\n", DefaultParserOptions())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Key)
	assert.Equal(t, "value", entries[0].Value)
}

func TestParseDuplicateTopLevelKeys(t *testing.T) {
	text := "ripgrep = rg\nripgrep = libgit2\n"
	entries, err := Parse(text, DefaultParserOptions())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ripgrep", entries[0].Key)
	assert.Equal(t, "ripgrep", entries[1].Key)
}

func TestPrintRoundTrip(t *testing.T) {
	text := "name = ripgrep\ndescription =\n  line one\n  line two\n"
	entries, err := Parse(text, DefaultParserOptions())
	require.NoError(t, err)

	printed := Print(entries)
	reparsed, err := Parse(printed, DefaultParserOptions())
	require.NoError(t, err)

	require.Len(t, reparsed, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].Key, reparsed[i].Key)
		assert.Equal(t, entries[i].Value, reparsed[i].Value)
	}
}

func TestSpacingStrictPreservesExtraWhitespace(t *testing.T) {
	opts := DefaultParserOptions()
	opts.Spacing = SpacingStrict
	entries, err := Parse("name =  ripgrep\n", opts)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// Strict trims only a single leading space, leaving one extra.
	assert.Equal(t, " ripgrep", entries[0].Value)
}

func TestTabsNormalizeToSpaces(t *testing.T) {
	opts := DefaultParserOptions()
	opts.Tabs = TabsNormalizeToSpaces
	entries, err := Parse("name = a\tb\n", opts)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a b", entries[0].Value)
}
