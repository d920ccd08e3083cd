package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapePOSIXPlain(t *testing.T) {
	assert.Equal(t, "'ripgrep'", Escape("ripgrep", ShellPOSIX))
}

func TestEscapePOSIXEmbeddedQuote(t *testing.T) {
	assert.Equal(t, `'it'\''s'`, Escape("it's", ShellPOSIX))
}

func TestEscapePOSIXEmpty(t *testing.T) {
	assert.Equal(t, "''", Escape("", ShellPOSIX))
}

func TestEscapeWindowsPlain(t *testing.T) {
	assert.Equal(t, `"ripgrep"`, Escape("ripgrep", ShellWindows))
}

func TestEscapeWindowsEmbeddedQuote(t *testing.T) {
	assert.Equal(t, `"say \"hi\""`, Escape(`say "hi"`, ShellWindows))
}

func TestEscapeWindowsTrailingBackslash(t *testing.T) {
	assert.Equal(t, `"C:\path\\"`, Escape(`C:\path\`, ShellWindows))
}
