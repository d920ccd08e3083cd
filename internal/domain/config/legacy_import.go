package config

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/santa/internal/ccl"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// legacyTOML is the shape of a predecessor tool's TOML config: a package
// list and, per package, a table of source-name -> alternate-name
// overrides (e.g. [override.ripgrep] scoop = "rg").
type legacyTOML struct {
	Sources  []string                     `toml:"sources"`
	Packages []string                     `toml:"packages"`
	Override map[string]map[string]string `toml:"override"`
}

// ImportTOML converts a predecessor tool's TOML configuration into a CCL
// document. The caller runs the result through ParseLayer/the normal
// resolver so provenance and validation apply uniformly; this function
// only performs the textual conversion.
func ImportTOML(data []byte) (*ccl.Model, error) {
	var raw legacyTOML
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, domainerr.New(domainerr.KindParse, "failed to parse legacy TOML configuration").WithUnderlying(err)
	}

	var b strings.Builder
	writeBareList(&b, "sources", raw.Sources)
	writeBareList(&b, "packages", raw.Packages)
	for pkg, overrides := range raw.Override {
		fmt.Fprintf(&b, "%s =\n", pkg)
		for source, alt := range overrides {
			fmt.Fprintf(&b, "  %s = %s\n", source, alt)
		}
	}

	return ccl.ParseModel(b.String(), ccl.DefaultParserOptions())
}

// ImportINI converts a second predecessor shape — an INI file with a
// "[sources]" section listing enabled sources and a "[packages]" section
// listing desired package names (INI keys are used as plain values,
// values ignored) — into a CCL document.
func ImportINI(data []byte) (*ccl.Model, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, domainerr.New(domainerr.KindParse, "failed to parse legacy INI configuration").WithUnderlying(err)
	}

	var b strings.Builder
	if sec, err := file.GetSection("sources"); err == nil {
		writeBareList(&b, "sources", sec.KeyStrings())
	}
	if sec, err := file.GetSection("packages"); err == nil {
		writeBareList(&b, "packages", sec.KeyStrings())
	}

	return ccl.ParseModel(b.String(), ccl.DefaultParserOptions())
}

func writeBareList(b *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "%s =\n", key)
	for _, v := range values {
		fmt.Fprintf(b, "  = %s\n", v)
	}
}
