// Package config implements the layered configuration resolver: loading
// santa's CCL documents from the filesystem, merging them in precedence
// order, and exposing a single resolved view with per-field provenance.
package config

import (
	"github.com/felixgeelhaar/santa/internal/ccl"
	"github.com/felixgeelhaar/santa/internal/domainerr"
	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
)

// LayerKind identifies a layer's position in the precedence order.
type LayerKind int

const (
	// LayerBundled is the embedded default document, lowest precedence.
	LayerBundled LayerKind = iota
	// LayerDownloaded is a fetched, optionally signed, definitions layer.
	LayerDownloaded
	// LayerUser is the user's config.ccl.
	LayerUser
	// LayerProject is a project-local .santa/config.ccl, highest precedence.
	LayerProject
)

// String returns a human-readable name, used in provenance strings.
func (k LayerKind) String() string {
	switch k {
	case LayerBundled:
		return "bundled"
	case LayerDownloaded:
		return "downloaded"
	case LayerUser:
		return "user"
	case LayerProject:
		return "project"
	default:
		return "unknown"
	}
}

// Layer is one parsed CCL document in the resolution chain. A layer may
// declare an enabled-source order, full source-definition records, an
// enabled-package list, and per-package overrides, any of which may be
// absent.
type Layer struct {
	Kind          LayerKind
	Provenance    string
	SchemaVersion string
	SourceOrder   []string
	SourceDefs    map[string]pkgsource.SourceFieldOverride
	PackageOrder  []string
	Runtime       *RuntimeOverride
	Defs          *ccl.Model // root model, consulted for per-package override records
}

// ParseLayer parses a CCL document into a Layer. Reserved top-level keys
// are "sources", "packages", "runtime", and "schema_version"; everything
// else is a package-name keyed override, consulted lazily via Defs.
func ParseLayer(data []byte, kind LayerKind, provenance string) (*Layer, error) {
	m, err := ccl.ParseModel(string(data), ccl.DefaultParserOptions())
	if err != nil {
		return nil, domainerr.New(domainerr.KindParse, "failed to parse configuration layer").
			WithContext(provenance).
			WithUnderlying(err)
	}

	version := pkgsource.ReadSchemaVersion(m)
	if err := pkgsource.CheckSchemaVersion(version); err != nil {
		return nil, err
	}

	layer := &Layer{
		Kind:          kind,
		Provenance:    provenance,
		SchemaVersion: version,
		Defs:          m,
	}

	if m.Has("sources") {
		child, err := m.Get("sources")
		if err != nil {
			return nil, err
		}
		if list, listErr := child.AsList(); listErr == nil {
			layer.SourceOrder = list
		} else {
			defs, tableErr := pkgsource.ParseSourceOverrideTable(child)
			if tableErr != nil {
				return nil, domainerr.New(domainerr.KindConfig, "invalid sources table").
					WithContext(provenance).
					WithUnderlying(tableErr)
			}
			layer.SourceDefs = defs
			layer.SourceOrder = child.Keys()
		}
	}

	if m.Has("packages") {
		child, err := m.Get("packages")
		if err != nil {
			return nil, err
		}
		list, err := child.AsList()
		if err != nil {
			return nil, domainerr.New(domainerr.KindConfig, "packages must be a list").
				WithContext(provenance).
				WithUnderlying(err)
		}
		layer.PackageOrder = list
	}

	if m.Has("runtime") {
		child, err := m.Get("runtime")
		if err != nil {
			return nil, err
		}
		ov, err := parseRuntimeOverride(child, provenance)
		if err != nil {
			return nil, err
		}
		layer.Runtime = ov
	}

	return layer, nil
}
