package ccl

import (
	"sort"
	"strings"
)

// Model is a node in the folded CCL hierarchy: either a scalar (Singleton)
// or an ordered collection of keyed children (Map). Duplicate keys at the
// same level fold into a child Map whose children all carry the empty key
// "" — the same shape a literal bare list produces, so list detection in
// model.go treats both uniformly.
type Model struct {
	singleton   bool
	scalar      string
	children    []kv
	index       map[string]int
	opts        ParserOptions
	accumulator bool
}

type kv struct {
	key   string
	value *Model
}

func newSingleton(s string, opts ParserOptions) *Model {
	return &Model{singleton: true, scalar: s, opts: opts}
}

func newMapModel(opts ParserOptions) *Model {
	return &Model{children: nil, index: map[string]int{}, opts: opts}
}

// IsSingleton reports whether m holds a scalar value.
func (m *Model) IsSingleton() bool { return m.singleton }

// IsMap reports whether m holds keyed children.
func (m *Model) IsMap() bool { return !m.singleton }

// BuildModel folds a flat entry sequence into a Model tree.
func BuildModel(entries []Entry, opts ParserOptions) (*Model, error) {
	root := newMapModel(opts)
	for _, e := range entries {
		val := buildValueModel(e.Value, opts)
		insertIntoMap(root, e.Key, val, opts)
	}
	if opts.DuplicateKeys == DuplicateKeysLexical {
		sortMapRecursive(root)
	}
	return root, nil
}

// buildValueModel decides whether a flat entry's raw text is itself a
// nested CCL block (a "key = value" or bare-list shape under more
// indentation) or a plain scalar, and builds the corresponding Model.
func buildValueModel(raw string, opts ParserOptions) *Model {
	if !canRecurse(raw, opts) {
		return newSingleton(raw, opts)
	}
	lines := splitLines(raw, opts)
	sub, err := parseLines(lines, opts)
	if err != nil {
		return newSingleton(raw, opts)
	}
	if len(sub) == 0 {
		return newSingleton(raw, opts)
	}
	m := newMapModel(opts)
	for _, e := range sub {
		m = insertIntoMap(m, e.Key, buildValueModel(e.Value, opts), opts)
	}
	if opts.DuplicateKeys == DuplicateKeysLexical {
		sortMapRecursive(m)
	}
	return m
}

// canRecurse reports whether raw looks like a nested CCL block: every
// line at the block's base indentation contains "=" and has a
// syntactically valid key (no leading '-', no unescaped space). Deeper
// (continuation) lines are not checked here — they are validated when
// their own key's value is recursively built.
func canRecurse(raw string, opts ParserOptions) bool {
	text := raw
	hasAny := false
	lines := splitLines(text, opts)
	baseIndent := -1
	for _, l := range lines {
		if isBlank(l) {
			continue
		}
		if baseIndent == -1 {
			baseIndent = l.indent
		}
		if l.indent > baseIndent {
			continue
		}
		hasAny = true
		trimmed := strings.TrimLeft(l.text, " \t")
		eq := strings.IndexByte(trimmed, '=')
		if eq < 0 {
			return false
		}
		key := strings.TrimSpace(trimmed[:eq])
		if key != "" {
			if key[0] == '-' || strings.ContainsAny(key, " \t") {
				return false
			}
		}
	}
	return hasAny
}

// insertIntoMap inserts (key, value) into level per the duplicate-key
// folding rule: the first occurrence of a key is stored as-is; a second
// occurrence promotes the slot into an accumulator Map of ""-keyed
// children (or, if the slot is already such an accumulator, appends to
// it directly).
func insertIntoMap(level *Model, key string, value *Model, opts ParserOptions) *Model {
	if key == "" {
		// Every "" entry is a direct list element, never folded: repeated ""
		// keys are how both literal bare lists and duplicate-key promotion
		// represent their elements, so they must stay flat siblings.
		level.children = append(level.children, kv{key: "", value: value})
		return level
	}
	if idx, ok := level.index[key]; ok {
		existing := level.children[idx].value
		if isAccumulator(existing) {
			existing.children = append(existing.children, kv{key: "", value: value})
		} else {
			acc := newMapModel(opts)
			acc.children = append(acc.children, kv{key: "", value: existing})
			acc.children = append(acc.children, kv{key: "", value: value})
			acc.accumulator = true
			level.children[idx].value = acc
		}
		return level
	}
	level.index[key] = len(level.children)
	level.children = append(level.children, kv{key: key, value: value})
	return level
}

// isAccumulator reports whether m was built by insertIntoMap's duplicate
// folding, as opposed to coincidentally having the same shape from a
// literal bare-list continuation block.
func isAccumulator(m *Model) bool {
	return m.IsMap() && m.accumulator
}

func sortMapRecursive(m *Model) {
	if m.IsSingleton() {
		return
	}
	sort.SliceStable(m.children, func(i, j int) bool {
		return m.children[i].key < m.children[j].key
	})
	m.index = map[string]int{}
	for i, c := range m.children {
		m.index[c.key] = i
		sortMapRecursive(c.value)
	}
}
