package pkgsource

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/santa/internal/ccl"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// SupportedSchemaMajor is the major version of the source-definitions and
// package-database document formats this build understands. A document
// declaring a different major is rejected outright; any minor/patch within
// this major is accepted (forward-compatible).
const SupportedSchemaMajor = "v1"

// DefaultSchemaVersion is assumed when a document omits schema_version.
const DefaultSchemaVersion = "v1.0.0"

// ReadSchemaVersion reads the top-level "schema_version" key of m, or
// DefaultSchemaVersion if absent.
func ReadSchemaVersion(m *ccl.Model) string {
	if m == nil || !m.Has("schema_version") {
		return DefaultSchemaVersion
	}
	v, err := m.GetStr("schema_version")
	if err != nil || v == "" {
		return DefaultSchemaVersion
	}
	return v
}

// CheckSchemaVersion validates raw against SupportedSchemaMajor using
// golang.org/x/mod/semver, returning a Kind: Config error naming the
// unsupported version when it doesn't match.
func CheckSchemaVersion(raw string) error {
	v := raw
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return domainerr.New(domainerr.KindConfig, fmt.Sprintf("invalid schema_version %q", raw))
	}
	if semver.Major(v) != SupportedSchemaMajor {
		return domainerr.New(domainerr.KindConfig,
			fmt.Sprintf("unsupported schema_version %q: this build understands %s.x", raw, SupportedSchemaMajor))
	}
	return nil
}
