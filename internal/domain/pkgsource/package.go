package pkgsource

import (
	"github.com/felixgeelhaar/santa/internal/ccl"
)

// PackageOverride is a per-source override of how a package is installed:
// an alternate name, a pre-install hook fragment, an install-suffix, or a
// direct URL, per spec §6's "package database format".
type PackageOverride struct {
	AltName       string
	Pre           string
	InstallSuffix string
	URL           string
}

// Package is the fully-resolved representation of a package definition:
// either a bare name (Sources/Overrides empty, installable anywhere enabled)
// or a record naming the sources it's restricted to and any per-source
// overrides.
type Package struct {
	Name      string
	Sources   []string
	Overrides map[string]PackageOverride
}

var packageOverrideSchema = &ccl.Schema{Fields: []ccl.Field{
	{CCLKey: "pre", Kind: ccl.FieldOptionalScalar},
	{CCLKey: "install_suffix", Kind: ccl.FieldOptionalScalar},
	{CCLKey: "url", Kind: ccl.FieldOptionalScalar},
}}

// LoadPackages combines a bare list of package names (the "packages ="
// field of the resolved config) with an optional package-database map
// keyed by package name (source overrides, §6) into the typed Package
// table used by the planner.
func LoadPackages(packageNames []string, defs *ccl.Model) (map[string]Package, error) {
	out := make(map[string]Package, len(packageNames))
	for _, name := range packageNames {
		pkg := Package{Name: name, Overrides: map[string]PackageOverride{}}
		if defs != nil && defs.Has(name) {
			def, err := defs.Get(name)
			if err != nil {
				return nil, err
			}
			if err := applyPackageDef(&pkg, def); err != nil {
				return nil, err
			}
		}
		out[name] = pkg
	}
	return out, nil
}

func applyPackageDef(pkg *Package, def *ccl.Model) error {
	if def.IsSingleton() {
		// A scalar package-definition value carries no overrides.
		return nil
	}
	seen := map[string]bool{}
	for _, key := range def.Keys() {
		child, err := def.Get(key)
		if err != nil {
			return err
		}
		if key == "_sources" {
			list, err := child.AsList()
			if err != nil {
				return err
			}
			for _, s := range list {
				if !seen[s] {
					seen[s] = true
					pkg.Sources = append(pkg.Sources, s)
				}
			}
			continue
		}
		ov := PackageOverride{}
		if child.IsSingleton() {
			s, err := child.AsStr()
			if err != nil {
				return err
			}
			ov.AltName = s
		} else {
			rec, err := ccl.Decode(child, packageOverrideSchema)
			if err != nil {
				return err
			}
			ov.Pre = strOr(rec["pre"])
			ov.InstallSuffix = strOr(rec["install_suffix"])
			ov.URL = strOr(rec["url"])
		}
		pkg.Overrides[key] = ov
		if !seen[key] {
			seen[key] = true
			pkg.Sources = append(pkg.Sources, key)
		}
	}
	return nil
}

// InstallableFrom reports whether pkg is installable from source, given
// pkg.Sources is empty (meaning "any enabled source") or contains source.
func (pkg Package) InstallableFrom(source string) bool {
	if len(pkg.Sources) == 0 {
		return true
	}
	for _, s := range pkg.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// NameFor returns the package's install-time name for source: the override
// alt-name if one exists, else pkg.Name unchanged.
func (pkg Package) NameFor(source string) string {
	if ov, ok := pkg.Overrides[source]; ok && ov.AltName != "" {
		return ov.AltName
	}
	return pkg.Name
}
