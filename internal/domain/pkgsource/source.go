// Package pkgsource is the typed representation of package-manager sources,
// their platform overrides, and package definitions: the data model that
// sits between the layered CCL configuration and the planner.
package pkgsource

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/felixgeelhaar/santa/internal/ccl"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// PlatformMatch narrows when a PlatformOverride applies. Empty fields match
// anything.
type PlatformMatch struct {
	OS     string
	Arch   string
	Distro string
}

// Matches reports whether m applies to the running (or supplied) platform.
func (m PlatformMatch) Matches(goos, goarch, distro string) bool {
	if m.OS != "" && m.OS != goos {
		return false
	}
	if m.Arch != "" && m.Arch != goarch {
		return false
	}
	if m.Distro != "" && m.Distro != distro {
		return false
	}
	return true
}

// PlatformOverride is a platform-scoped partial record overriding some of a
// Source's fields. The first override in a Source's Overrides list whose
// Match is satisfied wins.
type PlatformOverride struct {
	Match            PlatformMatch
	ShellCommand     *string
	InstallCommand   *string
	UninstallCommand *string
	CheckCommand     *string
	PrependToName    *string
}

// Source is a package-manager backend: brew, apt, cargo, etc. Source names
// are an open set — unrecognized names are carried through as opaque
// symbols rather than rejected, per spec.
type Source struct {
	Name                 string
	Emoji                string
	ShellCommand         string
	InstallCommand       string
	UninstallCommand     string
	CheckCommand         string
	PrependToPackageName string
	Overrides            []PlatformOverride
}

// ErrInvalidSource is returned by NewSource when required fields are missing.
var ErrInvalidSource = domainerr.New(domainerr.KindConfig, "invalid source definition")

// NewSource validates and constructs a Source. Name and ShellCommand are
// required; CheckCommand is required since the planner cannot compute an
// installed set without it.
func NewSource(name, emoji, shellCommand, installCommand, uninstallCommand, checkCommand, prependToPackageName string, overrides []PlatformOverride) (Source, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Source{}, ErrInvalidSource.WithContext("name is required")
	}
	if strings.TrimSpace(shellCommand) == "" {
		return Source{}, ErrInvalidSource.WithContext(fmt.Sprintf("%s: shell_command is required", name))
	}
	if strings.TrimSpace(checkCommand) == "" {
		return Source{}, ErrInvalidSource.WithContext(fmt.Sprintf("%s: check_command is required", name))
	}
	return Source{
		Name:                 name,
		Emoji:                emoji,
		ShellCommand:         shellCommand,
		InstallCommand:       installCommand,
		UninstallCommand:     uninstallCommand,
		CheckCommand:         checkCommand,
		PrependToPackageName: prependToPackageName,
		Overrides:            overrides,
	}, nil
}

// Resolved returns a copy of s with the first matching platform override
// (for the running GOOS/GOARCH and the supplied distro, which may be "")
// applied field-by-field.
func (s Source) Resolved(distro string) Source {
	out := s
	for _, ov := range s.Overrides {
		if !ov.Match.Matches(runtime.GOOS, runtime.GOARCH, distro) {
			continue
		}
		if ov.ShellCommand != nil {
			out.ShellCommand = *ov.ShellCommand
		}
		if ov.InstallCommand != nil {
			out.InstallCommand = *ov.InstallCommand
		}
		if ov.UninstallCommand != nil {
			out.UninstallCommand = *ov.UninstallCommand
		}
		if ov.CheckCommand != nil {
			out.CheckCommand = *ov.CheckCommand
		}
		if ov.PrependToName != nil {
			out.PrependToPackageName = *ov.PrependToName
		}
		break
	}
	return out
}

var sourceSchema = &ccl.Schema{Fields: []ccl.Field{
	{CCLKey: "emoji", Kind: ccl.FieldOptionalScalar},
	{CCLKey: "shell_command", Kind: ccl.FieldScalar},
	{CCLKey: "install_command", Kind: ccl.FieldOptionalScalar},
	{CCLKey: "uninstall_command", Kind: ccl.FieldOptionalScalar},
	{CCLKey: "check_command", Kind: ccl.FieldScalar},
	{CCLKey: "prepend_to_package_name", Kind: ccl.FieldOptionalScalar},
}}

// ParseSourceTable decodes a "source name -> record" top-level map (the
// source-definitions format in spec §6) into a name-indexed Source table.
// Unknown fields are ignored; overrides (a nested "overrides =" list of
// records) are parsed by ParsePlatformOverrides.
func ParseSourceTable(m *ccl.Model) (map[string]Source, error) {
	table := map[string]Source{}
	for _, name := range m.Keys() {
		child, err := m.Get(name)
		if err != nil {
			return nil, err
		}
		rec, err := ccl.Decode(child, sourceSchema)
		if err != nil {
			return nil, domainerr.New(domainerr.KindConfig, "invalid source "+name).WithUnderlying(err)
		}
		var overrides []PlatformOverride
		if child.Has("overrides") {
			ovChild, _ := child.Get("overrides")
			overrides, err = ParsePlatformOverrides(ovChild)
			if err != nil {
				return nil, domainerr.New(domainerr.KindConfig, "invalid overrides for "+name).WithUnderlying(err)
			}
		}
		src, err := NewSource(
			name,
			strOr(rec["emoji"]),
			strOr(rec["shell_command"]),
			strOr(rec["install_command"]),
			strOr(rec["uninstall_command"]),
			strOr(rec["check_command"]),
			strOr(rec["prepend_to_package_name"]),
			overrides,
		)
		if err != nil {
			return nil, err
		}
		table[name] = src
	}
	return table, nil
}

// SourceFieldOverride is a partial, field-wise override of a Source's
// scalar fields, used when a configuration layer only wants to override
// one or two fields of a source the bundled layer already fully defines.
// A nil pointer means "not set by this layer".
type SourceFieldOverride struct {
	Emoji            *string
	ShellCommand     *string
	InstallCommand   *string
	UninstallCommand *string
	CheckCommand     *string
	PrependToName    *string
	Overrides        []PlatformOverride
}

// ParseSourceOverrideTable decodes a "source name -> record" map where each
// record may supply any subset of Source's scalar fields, into a
// name-indexed override table. Unlike ParseSourceTable, no field is
// required — a layer may override just one field of a source another
// layer fully defines.
func ParseSourceOverrideTable(m *ccl.Model) (map[string]SourceFieldOverride, error) {
	table := map[string]SourceFieldOverride{}
	for _, name := range m.Keys() {
		child, err := m.Get(name)
		if err != nil {
			return nil, err
		}
		ov := SourceFieldOverride{}
		for _, field := range []struct {
			key string
			dst **string
		}{
			{"emoji", &ov.Emoji},
			{"shell_command", &ov.ShellCommand},
			{"install_command", &ov.InstallCommand},
			{"uninstall_command", &ov.UninstallCommand},
			{"check_command", &ov.CheckCommand},
			{"prepend_to_package_name", &ov.PrependToName},
		} {
			if child.Has(field.key) {
				s, err := child.GetStr(field.key)
				if err != nil {
					return nil, err
				}
				*field.dst = &s
			}
		}
		if child.Has("overrides") {
			ovChild, err := child.Get("overrides")
			if err != nil {
				return nil, err
			}
			platformOverrides, err := ParsePlatformOverrides(ovChild)
			if err != nil {
				return nil, err
			}
			ov.Overrides = platformOverrides
		}
		table[name] = ov
	}
	return table, nil
}

// ParsePlatformOverrides decodes an "overrides =" list-of-records child into
// PlatformOverride values.
func ParsePlatformOverrides(m *ccl.Model) ([]PlatformOverride, error) {
	var out []PlatformOverride
	for _, elem := range m.Elements() {
		ov := PlatformOverride{}
		if elem.Has("platform") {
			pm, _ := elem.Get("platform")
			if pm.Has("os") {
				s, _ := pm.GetStr("os")
				ov.Match.OS = s
			}
			if pm.Has("arch") {
				s, _ := pm.GetStr("arch")
				ov.Match.Arch = s
			}
			if pm.Has("distro") {
				s, _ := pm.GetStr("distro")
				ov.Match.Distro = s
			}
		}
		for _, field := range []struct {
			key string
			dst **string
		}{
			{"shell_command", &ov.ShellCommand},
			{"install_command", &ov.InstallCommand},
			{"uninstall_command", &ov.UninstallCommand},
			{"check_command", &ov.CheckCommand},
			{"prepend_to_package_name", &ov.PrependToName},
		} {
			if elem.Has(field.key) {
				s, err := elem.GetStr(field.key)
				if err != nil {
					return nil, err
				}
				*field.dst = &s
			}
		}
		out = append(out, ov)
	}
	return out, nil
}

func strOr(v any) string {
	s, _ := v.(string)
	return s
}
