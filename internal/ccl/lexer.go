// Package ccl implements the Categorical Configuration Language: a flat
// key/value text format with indentation-based continuations, duplicate-key
// folding into nested maps, and a small set of typed accessors. It has no
// dependency on anything outside the standard library, since its grammar is
// meant to be stable across independent reimplementations.
package ccl

import (
	"fmt"
	"strings"
)

// Spacing controls how whitespace around the "=" separator is trimmed.
type Spacing int

const (
	// SpacingLoose trims any run of spaces/tabs around "=" (the default).
	SpacingLoose Spacing = iota
	// SpacingStrict trims at most a single leading/trailing space, leaving
	// extra whitespace as part of the key or value.
	SpacingStrict
)

// TabPolicy controls how literal tab characters inside keys/values are handled.
type TabPolicy int

const (
	// TabsPreserve leaves tab characters untouched.
	TabsPreserve TabPolicy = iota
	// TabsNormalizeToSpaces rewrites every tab to a single space.
	TabsNormalizeToSpaces
)

// LineEndingPolicy controls how CRLF/CR line endings in the source text are handled.
type LineEndingPolicy int

const (
	// LineEndingsNormalizeLF rewrites CRLF and CR to LF before parsing.
	LineEndingsNormalizeLF LineEndingPolicy = iota
	// LineEndingsPreserveLiteral leaves line endings as found in the source.
	LineEndingsPreserveLiteral
)

// DuplicateKeyPolicy controls the order in which sibling keys are emitted
// by the hierarchy builder.
type DuplicateKeyPolicy int

const (
	// DuplicateKeysInsertion preserves the order keys were first seen in.
	DuplicateKeysInsertion DuplicateKeyPolicy = iota
	// DuplicateKeysLexical sorts sibling keys lexically before emission.
	DuplicateKeysLexical
)

// ListCoercionPolicy controls whether a map with two or more "" keys is
// eligible to be read back as a list via AsList.
type ListCoercionPolicy int

const (
	// ListCoercionEnabled allows empty-keyed maps to be read as lists.
	ListCoercionEnabled ListCoercionPolicy = iota
	// ListCoercionDisabled rejects AsList on any map, even an all-"" one.
	ListCoercionDisabled
)

// BoolStrictness controls which spellings AsBool accepts.
type BoolStrictness int

const (
	// BoolLenient accepts true/false, yes/no, on/off, 1/0 (case-insensitive).
	BoolLenient BoolStrictness = iota
	// BoolStrict accepts only "true" and "false" (case-insensitive).
	BoolStrict
)

// ParserOptions configures lexing, folding and list-coercion behavior.
type ParserOptions struct {
	Spacing            Spacing
	Tabs               TabPolicy
	LineEndings        LineEndingPolicy
	DuplicateKeys      DuplicateKeyPolicy
	ListCoercion       ListCoercionPolicy
	// TypedListFiltering, when true, excludes numeric-only values from
	// AsList results. Off by default: CCL has no type system, so digit-only
	// strings (ports, bare version numbers) are ordinary list elements.
	TypedListFiltering bool
	// BoolStrictness selects which spellings AsBool accepts. Lenient by
	// default.
	BoolStrictness BoolStrictness
}

// DefaultParserOptions returns the options santa uses unless a document
// requests otherwise.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		Spacing:       SpacingLoose,
		Tabs:          TabsPreserve,
		LineEndings:   LineEndingsNormalizeLF,
		DuplicateKeys: DuplicateKeysInsertion,
		ListCoercion:  ListCoercionEnabled,
	}
}

// Entry is one flat key/value pair as produced by the lexer, before
// hierarchy folding.
type Entry struct {
	Key    string
	Value  string
	Line   int
	Column int
}

// IsComment reports whether e is a comment entry (key begins with "/").
func (e Entry) IsComment() bool {
	return len(e.Key) > 0 && e.Key[0] == '/'
}

// ParseError describes a structural impossibility in the source text, such
// as an "=" preceded only by whitespace.
type ParseError struct {
	Line   int
	Column int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ccl: %d:%d: %s", e.Line, e.Column, e.Reason)
}

type rawLine struct {
	text   string
	number int
	indent int
}

// Parse tokenizes text into a flat, ordered sequence of entries.
func Parse(text string, opts ParserOptions) ([]Entry, error) {
	lines := splitLines(text, opts)
	entries, err := parseLines(lines, opts)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Key == "" && e.Column > 1 {
			return nil, &ParseError{Line: e.Line, Column: e.Column, Reason: "'=' preceded only by whitespace"}
		}
	}
	return entries, nil
}

func splitLines(text string, opts ParserOptions) []rawLine {
	if opts.LineEndings == LineEndingsNormalizeLF {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}
	raw := strings.Split(text, "\n")
	lines := make([]rawLine, 0, len(raw))
	for i, l := range raw {
		lines = append(lines, rawLine{
			text:   l,
			number: i + 1,
			indent: indentOf(l, opts),
		})
	}
	return lines
}

func indentOf(line string, opts ParserOptions) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			if opts.Tabs == TabsNormalizeToSpaces {
				n += 4
			} else {
				n++
			}
		default:
			return n
		}
	}
	return n
}

func isBlank(l rawLine) bool {
	return strings.TrimSpace(l.text) == ""
}

// parseLines runs the entry/continuation state machine over an already
// split, already indent-measured block of lines.
func parseLines(lines []rawLine, opts ParserOptions) ([]Entry, error) {
	var entries []Entry

	i := 0
	for i < len(lines) {
		l := lines[i]
		if isBlank(l) {
			i++
			continue
		}

		trimmed := strings.TrimLeft(l.text, " \t")
		keyIndent := l.indent

		if strings.HasPrefix(trimmed, "/") {
			entry := Entry{Key: strings.TrimSpace(trimmed), Value: "", Line: l.number, Column: keyIndent + 1}
			i++
			var cont []string
			for i < len(lines) {
				if isBlank(lines[i]) {
					i++
					continue
				}
				if lines[i].indent <= keyIndent {
					break
				}
				cont = append(cont, stripTabsIfNeeded(lines[i].text, opts))
				i++
			}
			if len(cont) > 0 {
				entry.Value = "\n" + strings.Join(cont, "\n")
			}
			entries = append(entries, entry)
			continue
		}

		eq := strings.IndexByte(trimmed, '=')
		if eq < 0 {
			return nil, &ParseError{Line: l.number, Column: keyIndent + 1, Reason: "expected '=' on a line that is not a continuation"}
		}

		rawKey := trimmed[:eq]
		rawVal := trimmed[eq+1:]

		if strings.TrimSpace(rawKey) == "" && rawKey != "" {
			return nil, &ParseError{Line: l.number, Column: keyIndent + 1, Reason: "'=' preceded only by whitespace"}
		}

		key := trimSeparatorSpace(rawKey, opts.Spacing, true)
		inline := trimSeparatorSpace(rawVal, opts.Spacing, false)
		key = stripTabsIfNeeded(key, opts)
		inline = stripTabsIfNeeded(inline, opts)

		entry := Entry{Key: key, Line: l.number, Column: keyIndent + 1}

		i++
		var cont []string
		for i < len(lines) {
			if isBlank(lines[i]) {
				i++
				continue
			}
			if lines[i].indent <= keyIndent {
				break
			}
			cont = append(cont, stripTabsIfNeeded(lines[i].text, opts))
			i++
		}

		switch {
		case len(cont) == 0:
			entry.Value = inline
		case inline == "":
			entry.Value = "\n" + strings.Join(cont, "\n")
		default:
			entry.Value = inline + "\n" + strings.Join(cont, "\n")
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func trimSeparatorSpace(s string, spacing Spacing, isKey bool) string {
	if spacing == SpacingLoose {
		return strings.TrimSpace(s)
	}
	// Strict: trim at most one leading/trailing space.
	if isKey {
		s = strings.TrimSuffix(s, " ")
	} else {
		s = strings.TrimPrefix(s, " ")
	}
	return s
}

func stripTabsIfNeeded(s string, opts ParserOptions) string {
	if opts.Tabs == TabsNormalizeToSpaces {
		return strings.ReplaceAll(s, "\t", " ")
	}
	return s
}

// Print renders entries back into canonical CCL text. It is the inverse of
// Parse for any entry slice Parse itself could have produced.
func Print(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.IsComment() {
			lines := strings.Split(strings.TrimPrefix(e.Value, "\n"), "\n")
			b.WriteString(e.Key)
			b.WriteString("\n")
			if e.Value != "" {
				for _, l := range lines {
					b.WriteString(l)
					b.WriteString("\n")
				}
			}
			continue
		}
		if !strings.Contains(e.Value, "\n") {
			b.WriteString(e.Key)
			b.WriteString(" = ")
			b.WriteString(e.Value)
			b.WriteString("\n")
			continue
		}
		b.WriteString(e.Key)
		b.WriteString(" =\n")
		lines := strings.Split(strings.TrimPrefix(e.Value, "\n"), "\n")
		for _, l := range lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	return b.String()
}
