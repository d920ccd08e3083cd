package config

import (
	"github.com/felixgeelhaar/santa/internal/domainerr"
	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
)

// ProvenanceMap tracks which layer contributed each resolved field.
type ProvenanceMap map[string]string

// ResolvedConfig is the merged, single view a command operates against.
type ResolvedConfig struct {
	Sources      map[string]pkgsource.Source
	SourceOrder  []string
	Packages     map[string]pkgsource.Package
	PackageOrder []string
	Runtime      RuntimeSettings
	Warnings     []string
	provenance   ProvenanceMap
}

// Provenance returns the layer that contributed path, or "" if unset.
func (r *ResolvedConfig) Provenance(path string) string {
	if r.provenance == nil {
		return ""
	}
	return r.provenance[path]
}

// ErrNoSources is returned by Merge when the resolved source set is empty.
var ErrNoSources = domainerr.New(domainerr.KindValidation, "resolved configuration has no enabled sources")

// sourceAccum accumulates a Source's fields across layers, field-wise,
// so that a later layer may override a single field of a source first
// defined by an earlier layer without clobbering the rest.
type sourceAccum struct {
	name      string
	emoji     string
	shell     string
	install   string
	uninstall string
	check     string
	prependTo string
	overrides []pkgsource.PlatformOverride
}

// Merger merges layers into a ResolvedConfig.
type Merger struct{}

// NewMerger creates a new Merger.
func NewMerger() *Merger {
	return &Merger{}
}

// Merge combines layers (lowest to highest precedence) per §4.F:
//   - sources: later layers may reorder but not introduce names outside
//     the union; per-source fields and overrides deep-merge, last field
//     wins.
//   - packages: later layers add to or override earlier layers by key.
//   - per-source package overrides: later layers deep-merge.
func (m *Merger) Merge(layers []Layer) (*ResolvedConfig, error) {
	resolved := &ResolvedConfig{
		Sources:    map[string]pkgsource.Source{},
		Packages:   map[string]pkgsource.Package{},
		Runtime:    DefaultRuntimeSettings(),
		provenance: ProvenanceMap{},
	}

	accums := map[string]*sourceAccum{}
	union := map[string]bool{}
	var lastOrder []string

	for _, layer := range layers {
		if layer.Runtime != nil {
			resolved.Runtime = resolved.Runtime.ApplyOverride(layer.Runtime)
			m.track(resolved, "runtime", layer.Provenance)
		}
		for name, ov := range layer.SourceDefs {
			acc, ok := accums[name]
			if !ok {
				acc = &sourceAccum{name: name}
				accums[name] = acc
			}
			if ov.Emoji != nil {
				acc.emoji = *ov.Emoji
				m.track(resolved, "sources."+name+".emoji", layer.Provenance)
			}
			if ov.ShellCommand != nil {
				acc.shell = *ov.ShellCommand
				m.track(resolved, "sources."+name+".shell_command", layer.Provenance)
			}
			if ov.InstallCommand != nil {
				acc.install = *ov.InstallCommand
				m.track(resolved, "sources."+name+".install_command", layer.Provenance)
			}
			if ov.UninstallCommand != nil {
				acc.uninstall = *ov.UninstallCommand
				m.track(resolved, "sources."+name+".uninstall_command", layer.Provenance)
			}
			if ov.CheckCommand != nil {
				acc.check = *ov.CheckCommand
				m.track(resolved, "sources."+name+".check_command", layer.Provenance)
			}
			if ov.PrependToName != nil {
				acc.prependTo = *ov.PrependToName
			}
			if len(ov.Overrides) > 0 {
				acc.overrides = append(acc.overrides, ov.Overrides...)
				m.track(resolved, "sources."+name+".overrides", layer.Provenance)
			}
			union[name] = true
		}
		if len(layer.SourceOrder) > 0 {
			lastOrder = layer.SourceOrder
		}
	}

	order := append([]string{}, lastOrder...)
	seen := map[string]bool{}
	for _, name := range order {
		seen[name] = true
		if !union[name] {
			resolved.Warnings = append(resolved.Warnings,
				"source \""+name+"\" referenced in ordering but never defined; carried as opaque")
		}
	}
	for name := range union {
		if !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	resolved.SourceOrder = order

	for name, acc := range accums {
		if acc.shell == "" || acc.check == "" {
			resolved.Warnings = append(resolved.Warnings,
				"source \""+name+"\" is missing shell_command or check_command and cannot be used")
			continue
		}
		src, err := pkgsource.NewSource(name, acc.emoji, acc.shell, acc.install, acc.uninstall, acc.check, acc.prependTo, acc.overrides)
		if err != nil {
			return nil, err
		}
		resolved.Sources[name] = src
	}
	if len(resolved.Sources) == 0 {
		return nil, ErrNoSources
	}

	pkgNames := map[string]bool{}
	var pkgOrder []string
	for _, layer := range layers {
		for _, name := range layer.PackageOrder {
			if !pkgNames[name] {
				pkgNames[name] = true
				pkgOrder = append(pkgOrder, name)
			}
			m.track(resolved, "packages."+name, layer.Provenance)
		}
	}
	resolved.PackageOrder = pkgOrder

	for _, name := range pkgOrder {
		pkg := pkgsource.Package{Name: name, Overrides: map[string]pkgsource.PackageOverride{}}
		for _, layer := range layers {
			if layer.Defs == nil || !layer.Defs.Has(name) {
				continue
			}
			merged, err := pkgsource.LoadPackages([]string{name}, layer.Defs)
			if err != nil {
				return nil, err
			}
			layerPkg := merged[name]
			for _, s := range layerPkg.Sources {
				found := false
				for _, existing := range pkg.Sources {
					if existing == s {
						found = true
						break
					}
				}
				if !found {
					pkg.Sources = append(pkg.Sources, s)
				}
			}
			for source, ov := range layerPkg.Overrides {
				pkg.Overrides[source] = ov
				m.track(resolved, "packages."+name+".overrides."+source, layer.Provenance)
			}
		}
		resolved.Packages[name] = pkg
	}

	for _, pkg := range resolved.Packages {
		for _, s := range pkg.Sources {
			if _, ok := resolved.Sources[s]; !ok {
				resolved.Warnings = append(resolved.Warnings,
					"package \""+pkg.Name+"\" references unknown source \""+s+"\"")
			}
		}
	}

	return resolved, nil
}

func (m *Merger) track(resolved *ResolvedConfig, path, provenance string) {
	resolved.provenance[path] = provenance
}
