package main

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/felixgeelhaar/santa/internal/adapters/command"
	"github.com/felixgeelhaar/santa/internal/adapters/logging"
	"github.com/felixgeelhaar/santa/internal/compose"
	"github.com/felixgeelhaar/santa/internal/domain/config"
	"github.com/felixgeelhaar/santa/internal/domain/plan"
	"github.com/felixgeelhaar/santa/internal/domain/platform"
	"github.com/felixgeelhaar/santa/internal/domain/script"
	"github.com/felixgeelhaar/santa/internal/ports"
)

// environment is the set of collaborators every subcommand needs, built
// once from the resolved configuration and CLI flags.
type environment struct {
	resolved *config.ResolvedConfig
	planner  *plan.Planner
	composer *compose.Composer
	logger   ports.Logger
}

// buildEnvironment loads and resolves configuration, then wires the
// planner, composer, and logger around it.
func buildEnvironment() (*environment, error) {
	if cfgFile != "" {
		os.Setenv("SANTA_CONFIG", cfgFile)
	}
	if builtinOnly {
		os.Setenv("SANTA_BUILTIN_ONLY", "true")
	}

	loader := config.NewLoader()
	resolved, err := loader.Load(nil)
	if err != nil {
		return nil, err
	}

	logger := newLogger(resolved.Runtime.LogLevel)
	ttl := time.Duration(resolved.Runtime.CacheTTLSeconds) * time.Second
	cache := plan.NewCache(ttl, resolved.Runtime.CacheSize, logger)
	driver := command.NewDriver(ports.NewRealCommandRunner())

	p := platform.Detect()
	planner := plan.NewPlanner(cache, driver, p, logger)

	target := compose.ShellPOSIX
	if p.IsWindows() {
		target = compose.ShellWindows
	}
	composer := compose.NewComposer(target)

	return &environment{
		resolved: resolved,
		planner:  planner,
		composer: composer,
		logger:   logger,
	}, nil
}

func newLogger(level string) ports.Logger {
	if verbose {
		return logging.NewConsoleLogger(logging.WithLevel(ports.LevelDebug))
	}
	lvl, ok := parseLevel(level)
	if !ok {
		return logging.NewNopLogger()
	}
	return logging.NewConsoleLogger(logging.WithLevel(lvl))
}

func parseLevel(s string) (ports.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return ports.LevelDebug, true
	case "info":
		return ports.LevelInfo, true
	case "warn", "warning":
		return ports.LevelWarn, true
	case "error":
		return ports.LevelError, true
	default:
		return ports.LevelInfo, false
	}
}

// scriptFormat picks the format to render install scripts in: the
// resolved runtime setting if set, otherwise whatever DetectFormat infers
// for the running OS.
func scriptFormat(resolved *config.ResolvedConfig) script.Format {
	if resolved.Runtime.ScriptFormat != "" {
		return script.Format(resolved.Runtime.ScriptFormat)
	}
	return script.DetectFormat(runtime.GOOS)
}
