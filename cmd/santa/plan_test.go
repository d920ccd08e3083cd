package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
)

func TestResolvePackagesUsesKnownRecord(t *testing.T) {
	t.Parallel()

	known := map[string]pkgsource.Package{
		"ripgrep": {
			Name:    "ripgrep",
			Sources: []string{"brew"},
			Overrides: map[string]pkgsource.PackageOverride{
				"brew": {AltName: "rg"},
			},
		},
	}

	got := resolvePackages(known, []string{"ripgrep"})

	assert.Equal(t, []pkgsource.Package{known["ripgrep"]}, got)
}

func TestResolvePackagesFallsBackForUnknownName(t *testing.T) {
	t.Parallel()

	got := resolvePackages(map[string]pkgsource.Package{}, []string{"jq"})

	assert.Equal(t, []pkgsource.Package{
		{Name: "jq", Overrides: map[string]pkgsource.PackageOverride{}},
	}, got)
}

func TestResolvePackagesPreservesOrderAndLength(t *testing.T) {
	t.Parallel()

	names := []string{"a", "b", "c"}
	got := resolvePackages(map[string]pkgsource.Package{}, names)

	assert.Len(t, got, 3)
	for i, name := range names {
		assert.Equal(t, name, got[i].Name)
	}
}
