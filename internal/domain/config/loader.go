package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// EmbeddedDefaults is the bundled source-definitions/package-database
// document. The caller sets it before Load; while it is empty, Load adds no
// bundled layer.
var EmbeddedDefaults []byte

// Loader loads and resolves configuration layers from the filesystem.
type Loader struct {
	// HomeDir and WorkDir are overridable for tests; both default to the
	// process's actual values when zero.
	HomeDir string
	WorkDir string
}

// NewLoader creates a Loader using the process's real home and working
// directories.
func NewLoader() *Loader {
	return &Loader{}
}

// UserConfigPath resolves the user configuration path per §6's search
// order: $SANTA_CONFIG, then ~/.config/santa/config.ccl.
func (l *Loader) UserConfigPath() string {
	if path := os.Getenv("SANTA_CONFIG"); path != "" {
		return path
	}
	home := l.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".config", "santa", "config.ccl")
}

// ProjectConfigPath resolves the project-local configuration path,
// ./.santa/config.ccl relative to WorkDir (or the process cwd).
func (l *Loader) ProjectConfigPath() string {
	dir := l.WorkDir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return filepath.Join(dir, ".santa", "config.ccl")
}

// LoadLayer reads and parses path as a layer of the given kind. A missing
// file is not an error for the user/project layers (they're optional) but
// is reported via ok=false so the caller can skip it silently.
func (l *Loader) LoadLayer(path string, kind LayerKind) (layer *Layer, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, domainerr.New(domainerr.KindIO, "failed to read configuration layer").
			WithContext(path).WithUnderlying(err)
	}
	layer, err = ParseLayer(data, kind, path)
	if err != nil {
		return nil, false, err
	}
	return layer, true, nil
}

// Load resolves the full bundled → downloaded → user → project chain
// into a ResolvedConfig. SANTA_BUILTIN_ONLY skips the user and project
// layers; SANTA_SOURCES/SANTA_PACKAGES, if set, override the final
// resolved source/package ordering with a comma-separated list.
func (l *Loader) Load(downloaded *Layer) (*ResolvedConfig, error) {
	var layers []Layer

	if len(EmbeddedDefaults) > 0 {
		bundled, err := ParseLayer(EmbeddedDefaults, LayerBundled, "embedded:defaults")
		if err != nil {
			return nil, err
		}
		layers = append(layers, *bundled)
	}

	if downloaded != nil {
		layers = append(layers, *downloaded)
	}

	if !builtinOnly() {
		if layer, ok, err := l.LoadLayer(l.UserConfigPath(), LayerUser); err != nil {
			return nil, err
		} else if ok {
			layers = append(layers, *layer)
		}

		if layer, ok, err := l.LoadLayer(l.ProjectConfigPath(), LayerProject); err != nil {
			return nil, err
		} else if ok {
			layers = append(layers, *layer)
		}
	}

	merger := NewMerger()
	resolved, err := merger.Merge(layers)
	if err != nil {
		return nil, err
	}

	if override := os.Getenv("SANTA_SOURCES"); override != "" {
		resolved.SourceOrder = splitCSV(override)
	}
	if override := os.Getenv("SANTA_PACKAGES"); override != "" {
		resolved.PackageOrder = splitCSV(override)
	}
	if err := applyRuntimeEnvOverrides(&resolved.Runtime); err != nil {
		return nil, err
	}

	return resolved, nil
}

// applyRuntimeEnvOverrides applies the SANTA_* runtime environment
// variables, which take precedence over every CCL layer.
func applyRuntimeEnvOverrides(rt *RuntimeSettings) error {
	if v := os.Getenv("SANTA_CACHE_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domainerr.New(domainerr.KindConfig, "SANTA_CACHE_TTL_SECONDS must be an integer").WithUnderlying(err)
		}
		rt.CacheTTLSeconds = n
	}
	if v := os.Getenv("SANTA_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domainerr.New(domainerr.KindConfig, "SANTA_CACHE_SIZE must be an integer").WithUnderlying(err)
		}
		rt.CacheSize = n
	}
	if v := os.Getenv("SANTA_OUTPUT_DIR"); v != "" {
		rt.OutputDir = v
	}
	if v := os.Getenv("SANTA_SCRIPT_FORMAT"); v != "" {
		rt.ScriptFormat = v
	}
	if v := os.Getenv("SANTA_LOG_LEVEL"); v != "" {
		rt.LogLevel = v
	}
	return nil
}

func builtinOnly() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SANTA_BUILTIN_ONLY")))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
