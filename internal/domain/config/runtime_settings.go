package config

import (
	"github.com/felixgeelhaar/santa/internal/ccl"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// RuntimeSettings holds the orchestrator's own tunables: cache sizing, where
// generated scripts land, which script format to prefer, and log verbosity.
// It is resolved through the same layered chain as sources and packages, so
// a project's ".santa/config.ccl" can, for instance, shrink the status cache
// without touching the user's global config.
type RuntimeSettings struct {
	CacheTTLSeconds int
	CacheSize       int
	OutputDir       string
	ScriptFormat    string
	LogLevel        string
}

// DefaultRuntimeSettings is used for any field no layer and no environment
// variable supplies.
func DefaultRuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		CacheTTLSeconds: 300,
		CacheSize:       1000,
		OutputDir:       "~/.santa/scripts",
		ScriptFormat:    "",
		LogLevel:        "info",
	}
}

// RuntimeOverride is one layer's partial view of RuntimeSettings; a nil
// field means the layer didn't mention that key.
type RuntimeOverride struct {
	CacheTTLSeconds *int
	CacheSize       *int
	OutputDir       *string
	ScriptFormat    *string
	LogLevel        *string
}

// parseRuntimeOverride decodes a layer's top-level "runtime" record.
func parseRuntimeOverride(child *ccl.Model, provenance string) (*RuntimeOverride, error) {
	ov := &RuntimeOverride{}

	if child.Has("cache_ttl_seconds") {
		n, err := intField(child, "cache_ttl_seconds", provenance)
		if err != nil {
			return nil, err
		}
		ov.CacheTTLSeconds = &n
	}
	if child.Has("cache_size") {
		n, err := intField(child, "cache_size", provenance)
		if err != nil {
			return nil, err
		}
		ov.CacheSize = &n
	}
	if child.Has("output_dir") {
		s, err := child.GetStr("output_dir")
		if err != nil {
			return nil, domainerr.New(domainerr.KindConfig, "runtime.output_dir must be a string").
				WithContext(provenance).WithUnderlying(err)
		}
		ov.OutputDir = &s
	}
	if child.Has("script_format") {
		s, err := child.GetStr("script_format")
		if err != nil {
			return nil, domainerr.New(domainerr.KindConfig, "runtime.script_format must be a string").
				WithContext(provenance).WithUnderlying(err)
		}
		ov.ScriptFormat = &s
	}
	if child.Has("log_level") {
		s, err := child.GetStr("log_level")
		if err != nil {
			return nil, domainerr.New(domainerr.KindConfig, "runtime.log_level must be a string").
				WithContext(provenance).WithUnderlying(err)
		}
		ov.LogLevel = &s
	}

	return ov, nil
}

func intField(parent *ccl.Model, key, provenance string) (int, error) {
	field, err := parent.Get(key)
	if err != nil {
		return 0, domainerr.New(domainerr.KindConfig, "runtime."+key+" is invalid").
			WithContext(provenance).WithUnderlying(err)
	}
	n, err := field.AsInt()
	if err != nil {
		return 0, domainerr.New(domainerr.KindConfig, "runtime."+key+" must be an integer").
			WithContext(provenance).WithUnderlying(err)
	}
	return int(n), nil
}

// ApplyOverride field-wise merges ov into s, a later layer's set fields
// replacing earlier ones, matching how Merger.Merge treats source fields.
func (s RuntimeSettings) ApplyOverride(ov *RuntimeOverride) RuntimeSettings {
	if ov == nil {
		return s
	}
	if ov.CacheTTLSeconds != nil {
		s.CacheTTLSeconds = *ov.CacheTTLSeconds
	}
	if ov.CacheSize != nil {
		s.CacheSize = *ov.CacheSize
	}
	if ov.OutputDir != nil {
		s.OutputDir = *ov.OutputDir
	}
	if ov.ScriptFormat != nil {
		s.ScriptFormat = *ov.ScriptFormat
	}
	if ov.LogLevel != nil {
		s.LogLevel = *ov.LogLevel
	}
	return s
}
