package ccl

import (
	"fmt"
	"strings"
)

// FieldKind classifies how a Schema field's Model value should be read.
type FieldKind int

const (
	// FieldScalar requires the key and reads it with AsStr.
	FieldScalar FieldKind = iota
	// FieldOptionalScalar reads the key with AsStr if present, else leaves
	// the field absent in the resulting Record.
	FieldOptionalScalar
	// FieldList reads the key with AsList.
	FieldList
	// FieldRecord reads the key as a nested Record described by SubSchema.
	FieldRecord
	// FieldListOfRecords reads each non-comment child of the key as a
	// Record described by SubSchema.
	FieldListOfRecords
)

// Field describes one named member of a Schema.
type Field struct {
	CCLKey    string
	Kind      FieldKind
	SubSchema *Schema
}

// Schema is an explicit, hand-declared description of a record shape. The
// mapping adapter binds a Model to/from a Schema without reflection: the
// caller declares what fields exist and how to read them, rather than the
// package inferring a shape from a Go struct's tags.
type Schema struct {
	Fields []Field
}

// Record is the generic decoded form of a Model read through a Schema.
// Callers convert a Record into their own Go type explicitly.
type Record map[string]any

// Decode reads m through schema into a Record. Missing FieldScalar/FieldList
// members are errors; missing FieldOptionalScalar members are simply absent
// from the result.
func Decode(m *Model, schema *Schema) (Record, error) {
	rec := Record{}
	for _, f := range schema.Fields {
		child, err := m.Get(f.CCLKey)
		if err != nil {
			if f.Kind == FieldOptionalScalar {
				continue
			}
			return nil, fmt.Errorf("decode %q: %w", f.CCLKey, err)
		}
		switch f.Kind {
		case FieldScalar, FieldOptionalScalar:
			s, err := child.AsStr()
			if err != nil {
				return nil, fmt.Errorf("decode %q: %w", f.CCLKey, err)
			}
			rec[f.CCLKey] = s
		case FieldList:
			list, err := child.AsList()
			if err != nil {
				return nil, fmt.Errorf("decode %q: %w", f.CCLKey, err)
			}
			rec[f.CCLKey] = list
		case FieldRecord:
			if f.SubSchema == nil {
				return nil, fmt.Errorf("decode %q: field declared FieldRecord without SubSchema", f.CCLKey)
			}
			sub, err := Decode(child, f.SubSchema)
			if err != nil {
				return nil, fmt.Errorf("decode %q: %w", f.CCLKey, err)
			}
			rec[f.CCLKey] = sub
		case FieldListOfRecords:
			if f.SubSchema == nil {
				return nil, fmt.Errorf("decode %q: field declared FieldListOfRecords without SubSchema", f.CCLKey)
			}
			var list []Record
			for i, elem := range child.Elements() {
				sub, err := Decode(elem, f.SubSchema)
				if err != nil {
					return nil, fmt.Errorf("decode %q[%d]: %w", f.CCLKey, i, err)
				}
				list = append(list, sub)
			}
			rec[f.CCLKey] = list
		}
	}
	return rec, nil
}

// Encode is the reverse of Decode: it turns a Record, read through the same
// Schema used to produce it, into a flat Entry sequence that Print can
// render. Keys are emitted in schema declaration order.
func Encode(rec Record, schema *Schema) []Entry {
	var entries []Entry
	for _, f := range schema.Fields {
		v, ok := rec[f.CCLKey]
		if !ok {
			continue
		}
		switch f.Kind {
		case FieldScalar, FieldOptionalScalar:
			entries = append(entries, Entry{Key: f.CCLKey, Value: fmt.Sprint(v)})
		case FieldList:
			list, _ := v.([]string)
			entries = append(entries, listEntry(f.CCLKey, list))
		case FieldRecord:
			sub, _ := v.(Record)
			nested := Encode(sub, f.SubSchema)
			entries = append(entries, nestedEntry(f.CCLKey, nested))
		case FieldListOfRecords:
			list, _ := v.([]Record)
			var nested []Entry
			for _, r := range list {
				nested = append(nested, Encode(r, f.SubSchema)...)
			}
			entries = append(entries, nestedEntry(f.CCLKey, nested))
		}
	}
	return entries
}

func listEntry(key string, items []string) Entry {
	text := Print(stringsToBareEntries(items))
	return Entry{Key: key, Value: "\n" + trimFinalNewline(indentBlock(text))}
}

func nestedEntry(key string, nested []Entry) Entry {
	text := Print(nested)
	return Entry{Key: key, Value: "\n" + trimFinalNewline(indentBlock(text))}
}

func stringsToBareEntries(items []string) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		out = append(out, Entry{Key: "", Value: it})
	}
	return out
}

func indentBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func trimFinalNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}
