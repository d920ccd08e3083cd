// Package compose assembles safe, shell-ready command strings from a
// package source's templates and a list of desired package names. It never
// executes anything; it only produces strings for the script generator or
// the external-process driver to run.
package compose

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/bidi"

	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// metaChars are shell metacharacters that, if present in a package name,
// indicate either an injection attempt or a name that was never meant to
// be a package identifier.
var metaChars = []string{";", "|", "&", "`", "$("}

// Sanitize validates and strips a package name per the composer's
// sanitization rules, in order:
//  1. strip zero-width and bidi-override Unicode, NUL, and C0 controls
//     other than tab
//  2. reject path-traversal sequences and leading dashes
//  3. reject shell metacharacters
//
// It returns a SecurityError (domainerr.KindSecurity) on rejection.
func Sanitize(name string) (string, error) {
	stripped, _, err := transform.String(runes.Remove(runes.Predicate(isStrippable)), name)
	if err != nil {
		return "", domainerr.New(domainerr.KindSecurity, "failed to sanitize package name").WithUnderlying(err)
	}
	stripped = strings.TrimSpace(stripped)

	if stripped == "" {
		return "", domainerr.New(domainerr.KindSecurity, "package name is empty after sanitization").WithContext(name)
	}
	if strings.Contains(stripped, "../") || strings.Contains(stripped, "..\\") {
		return "", domainerr.New(domainerr.KindSecurity, "package name contains a path-traversal sequence").WithContext(stripped)
	}
	if strings.HasPrefix(stripped, "-") {
		return "", domainerr.New(domainerr.KindSecurity, "package name cannot begin with a dash").WithContext(stripped)
	}
	for _, m := range metaChars {
		if strings.Contains(stripped, m) {
			return "", domainerr.New(domainerr.KindSecurity, "package name contains a shell metacharacter").WithContext(stripped)
		}
	}
	if strings.Contains(stripped, "${") {
		return "", domainerr.New(domainerr.KindSecurity, "package name contains a shell metacharacter").WithContext(stripped)
	}

	return stripped, nil
}

// zeroWidthRunes are Unicode code points that are invisible and carry no
// semantic content in a package name but can be used to smuggle divergent
// bytes past a human reviewer.
var zeroWidthRunes = map[rune]bool{
	'​': true, // zero width space
	'‌': true, // zero width non-joiner
	'‍': true, // zero width joiner
	0xFEFF: true, // zero width no-break space / BOM
	'⁠': true, // word joiner
	'᠎': true, // mongolian vowel separator
}

// isStrippable reports whether r is a zero-width character, a bidi
// embedding/override/isolate control, NUL, or a C0 control other than tab.
func isStrippable(r rune) bool {
	if r == 0 || zeroWidthRunes[r] {
		return true
	}
	if r != '\t' && r < 0x20 {
		return true
	}
	p, _ := bidi.LookupRune(r)
	switch p.Class() {
	case bidi.LRE, bidi.LRO, bidi.RLE, bidi.RLO, bidi.PDF, bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
		return true
	}
	return false
}
