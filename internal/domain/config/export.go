package config

import (
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// diagnosticView is the YAML-serializable snapshot of a ResolvedConfig
// that ExportYAML emits. It flattens the internal
// ProvenanceMap and pkgsource types into plain data.
type diagnosticView struct {
	SourceOrder  []string                   `yaml:"source_order"`
	Sources      map[string]diagnosticSrc   `yaml:"sources"`
	PackageOrder []string                   `yaml:"package_order"`
	Packages     map[string][]string        `yaml:"packages"` // package name -> sources
	Warnings     []string                   `yaml:"warnings,omitempty"`
	Provenance   map[string]string          `yaml:"provenance,omitempty"`
}

type diagnosticSrc struct {
	Emoji          string `yaml:"emoji,omitempty"`
	ShellCommand   string `yaml:"shell_command"`
	InstallCommand string `yaml:"install_command,omitempty"`
	CheckCommand   string `yaml:"check_command"`
}

// ExportYAML serializes a ResolvedConfig to YAML for diagnostics output.
func ExportYAML(resolved *ResolvedConfig) ([]byte, error) {
	view := diagnosticView{
		SourceOrder:  resolved.SourceOrder,
		Sources:      map[string]diagnosticSrc{},
		PackageOrder: resolved.PackageOrder,
		Packages:     map[string][]string{},
		Warnings:     resolved.Warnings,
		Provenance:   map[string]string(resolved.provenance),
	}
	for name, src := range resolved.Sources {
		view.Sources[name] = diagnosticSrc{
			Emoji:          src.Emoji,
			ShellCommand:   src.ShellCommand,
			InstallCommand: src.InstallCommand,
			CheckCommand:   src.CheckCommand,
		}
	}
	for name, pkg := range resolved.Packages {
		view.Packages[name] = pkg.Sources
	}

	out, err := yaml.Marshal(view)
	if err != nil {
		return nil, domainerr.New(domainerr.KindIO, "failed to export diagnostics as YAML").WithUnderlying(err)
	}
	return out, nil
}
