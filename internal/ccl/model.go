package ccl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors returned by accessors. Wrap with fmt.Errorf("%w: ...") for
// path context.
var (
	ErrMissingKey    = errors.New("ccl: missing key")
	ErrNotAMap       = errors.New("ccl: value is not a map")
	ErrNotASingleton = errors.New("ccl: value is not a singleton")
	ErrNotAList      = errors.New("ccl: value is not a list")
	ErrNotANumber    = errors.New("ccl: value is not a number")
	ErrNotABool      = errors.New("ccl: value is not a boolean")
)

// Get returns the direct child of m named key.
func (m *Model) Get(key string) (*Model, error) {
	if m.IsSingleton() {
		return nil, fmt.Errorf("%w: %q (value is a singleton)", ErrNotAMap, key)
	}
	idx, ok := m.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return m.children[idx].value, nil
}

// At resolves a dotted path of keys, e.g. "sources.cargo.shell_command".
func (m *Model) At(path string) (*Model, error) {
	cur := m
	for _, part := range strings.Split(path, ".") {
		next, err := cur.Get(part)
		if err != nil {
			return nil, fmt.Errorf("at %q: %w", path, err)
		}
		cur = next
	}
	return cur, nil
}

// Keys returns the ordered list of this map's child keys, excluding
// comments.
func (m *Model) Keys() []string {
	if m.IsSingleton() {
		return nil
	}
	keys := make([]string, 0, len(m.children))
	for _, c := range m.children {
		if strings.HasPrefix(c.key, "/") {
			continue
		}
		keys = append(keys, c.key)
	}
	return keys
}

// Elements returns m's direct children in order, excluding comments,
// regardless of their keys. Used to walk list-like maps whose elements
// share the repeated "" key and so cannot be addressed individually by Get.
func (m *Model) Elements() []*Model {
	if m.IsSingleton() {
		return nil
	}
	var out []*Model
	for _, c := range m.children {
		if strings.HasPrefix(c.key, "/") {
			continue
		}
		out = append(out, c.value)
	}
	return out
}

// AsStr returns m's scalar text.
func (m *Model) AsStr() (string, error) {
	if !m.IsSingleton() {
		return "", ErrNotASingleton
	}
	return m.scalar, nil
}

// AsList interprets m as a list: a map with two or more children, all keyed
// "", yields their values in order; a map with exactly one ""-keyed child
// is a single-element list. Comment children are excluded before the check.
func (m *Model) AsList() ([]string, error) {
	if m.opts.ListCoercion == ListCoercionDisabled {
		return nil, fmt.Errorf("%w: list coercion disabled", ErrNotAList)
	}
	if m.IsSingleton() {
		return nil, ErrNotAList
	}
	var vals []string
	for _, c := range m.children {
		if strings.HasPrefix(c.key, "/") {
			continue
		}
		if c.key != "" {
			return nil, ErrNotAList
		}
		s, err := c.value.AsStr()
		if err != nil {
			return nil, fmt.Errorf("%w: element is not a scalar", ErrNotAList)
		}
		if m.opts.TypedListFiltering && isNumeric(s) {
			continue
		}
		vals = append(vals, s)
	}
	if vals == nil {
		return nil, ErrNotAList
	}
	return vals, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// AsInt parses m's scalar as a base-10 integer.
func (m *Model) AsInt() (int64, error) {
	s, err := m.AsStr()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return n, nil
}

// AsFloat parses m's scalar as a floating-point number.
func (m *Model) AsFloat() (float64, error) {
	s, err := m.AsStr()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return f, nil
}

// AsBool parses m's scalar as a boolean. In BoolLenient mode (the default)
// it accepts true/false, yes/no, on/off, 1/0 (case-insensitive); in
// BoolStrict mode it accepts only "true"/"false".
func (m *Model) AsBool() (bool, error) {
	s, err := m.AsStr()
	if err != nil {
		return false, err
	}
	trimmed := strings.ToLower(strings.TrimSpace(s))

	if m.opts.BoolStrictness == BoolStrict {
		switch trimmed {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return false, fmt.Errorf("%w: %q", ErrNotABool, s)
		}
	}

	switch trimmed {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrNotABool, s)
	}
}

// WithoutComments returns a copy of m with comment-keyed children (those
// starting with "/") removed at every level.
func (m *Model) WithoutComments() *Model {
	if m.IsSingleton() {
		return newSingleton(m.scalar, m.opts)
	}
	out := newMapModel(m.opts)
	out.accumulator = m.accumulator
	for _, c := range m.children {
		if strings.HasPrefix(c.key, "/") {
			continue
		}
		out.index[c.key] = len(out.children)
		out.children = append(out.children, kv{key: c.key, value: c.value.WithoutComments()})
	}
	return out
}

// FilterComments returns entries with comment entries removed.
func FilterComments(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsComment() {
			continue
		}
		out = append(out, e)
	}
	return out
}
