// Package plan drives per-source status checks and install execution
// concurrently, backed by a bounded cache and a per-source single-flight
// gate (§4.H, §4.I).
package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/santa/internal/adapters/command"
	"github.com/felixgeelhaar/santa/internal/compose"
	"github.com/felixgeelhaar/santa/internal/domain/config"
	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
	"github.com/felixgeelhaar/santa/internal/domainerr"
	"github.com/felixgeelhaar/santa/internal/ports"
)

// CheckTimeout bounds a single check_command invocation (§4.H).
const CheckTimeout = 30 * time.Second

// InstallTimeout bounds a single source's install execution (§4.H).
const InstallTimeout = 5 * time.Minute

// PlanEntry is one source's status: the packages it is missing relative to
// the desired set, the packages it has installed but the desired set does
// not name, and whether the source could be queried at all.
type PlanEntry struct {
	Source    string
	Missing   []string
	Extra     []string
	Available bool
	Warning   string
}

// StatusResult is the outcome of a Status call across every enabled
// source.
type StatusResult struct {
	RunID     string
	Entries   map[string]PlanEntry
	Cancelled bool
}

// InstallOutcome is one source's install result: either a composed script
// (safe mode) or the outcome of actually running it (execute mode).
type InstallOutcome struct {
	Source string
	Script string
	Ran    bool
	Output string
	Err    error
}

// AvailabilityChecker reports whether a source's platform-resolved
// shell_command is present on PATH, so Status can mark a source
// "unavailable" without ever invoking its check_command. *platform.Platform
// satisfies this.
type AvailabilityChecker interface {
	HasCommand(name string) bool
	ResolveSource(src pkgsource.Source) pkgsource.Source
}

// Planner drives the concurrent status/install workflow.
type Planner struct {
	cache    *Cache
	gates    *Gates
	driver   *command.Driver
	platform AvailabilityChecker
	logger   ports.Logger
}

// NewPlanner creates a Planner backed by cache, driver, and platform.
func NewPlanner(cache *Cache, driver *command.Driver, platform AvailabilityChecker, logger ports.Logger) *Planner {
	return &Planner{cache: cache, gates: NewGates(), driver: driver, platform: platform, logger: logger}
}

// Status computes missing/extra sets for every enabled source in resolved
// against desired, all sources in parallel. A source whose platform-resolved
// shell_command isn't present on PATH is still included in the result,
// marked unavailable, rather than silently dropped. A single RunID
// identifies the call for diagnostics. If ctx is cancelled before every
// queried source completes, the result is marked Cancelled but still
// carries whatever entries did complete.
func (p *Planner) Status(ctx context.Context, resolved *config.ResolvedConfig, desired []string) *StatusResult {
	result := &StatusResult{RunID: uuid.New().String(), Entries: map[string]PlanEntry{}}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range resolved.SourceOrder {
		src, ok := resolved.Sources[name]
		if !ok {
			continue
		}

		resolvedSrc := p.platform.ResolveSource(src)
		if !p.platform.HasCommand(resolvedSrc.ShellCommand) {
			result.Entries[src.Name] = PlanEntry{
				Source:  src.Name,
				Warning: fmt.Sprintf("unavailable: %s not found on PATH", resolvedSrc.ShellCommand),
			}
			continue
		}

		wg.Add(1)
		go func(src pkgsource.Source) {
			defer wg.Done()
			entry := p.statusForSource(ctx, src, desired)
			mu.Lock()
			result.Entries[src.Name] = entry
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	if ctx.Err() != nil {
		result.Cancelled = true
	}
	return result
}

func (p *Planner) statusForSource(ctx context.Context, src pkgsource.Source, desired []string) PlanEntry {
	installed, err := p.installedSet(ctx, src)
	if err != nil {
		switch domainerr.Category(err) {
		case domainerr.KindCancelled:
			return PlanEntry{Source: src.Name, Warning: "cancelled"}
		case domainerr.KindTimeout:
			return PlanEntry{Source: src.Name, Warning: "check_command timed out"}
		default:
			return PlanEntry{Source: src.Name, Warning: err.Error()}
		}
	}

	installedSet := make(map[string]bool, len(installed))
	for _, pkg := range installed {
		installedSet[pkg] = true
	}

	var missing []string
	for _, pkg := range desired {
		if !installedSet[pkg] {
			missing = append(missing, pkg)
		}
	}

	desiredSet := make(map[string]bool, len(desired))
	for _, pkg := range desired {
		desiredSet[pkg] = true
	}
	var extra []string
	for _, pkg := range installed {
		if !desiredSet[pkg] {
			extra = append(extra, pkg)
		}
	}
	sort.Strings(extra)

	return PlanEntry{Source: src.Name, Missing: missing, Extra: extra, Available: true}
}

// installedSet returns src's installed packages from the cache if fresh,
// otherwise invokes check_command behind src's single-flight gate.
func (p *Planner) installedSet(ctx context.Context, src pkgsource.Source) ([]string, error) {
	if cached, ok := p.cache.Get(src.Name); ok {
		return cached, nil
	}

	gate, err := p.gates.For(src.Name)
	if err != nil {
		return nil, err
	}

	return gate.Do(ctx, func(ctx context.Context) ([]string, error) {
		if cached, ok := p.cache.Get(src.Name); ok {
			return cached, nil
		}

		out, err := p.driver.Run(ctx, CheckTimeout, "sh", "-c", src.CheckCommand)
		if err != nil {
			if domainerr.Category(err) == domainerr.KindCommandFailed {
				if p.logger != nil {
					p.logger.Warn(ctx, "check_command failed; recording empty installed set",
						ports.F("source", src.Name))
				}
				p.cache.Put(ctx, src.Name, nil)
				return nil, nil
			}
			return nil, err
		}

		installed := splitNonEmpty(out)
		p.cache.Put(ctx, src.Name, installed)
		return installed, nil
	})
}

// Install composes (and, if execute is true, runs) an install invocation
// per source in missing, all sources in parallel, each bounded by
// InstallTimeout.
func (p *Planner) Install(ctx context.Context, resolved *config.ResolvedConfig, missing map[string][]string, composer *compose.Composer, execute bool) map[string]InstallOutcome {
	results := make(map[string]InstallOutcome, len(missing))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, names := range missing {
		src, ok := resolved.Sources[name]
		if !ok || len(names) == 0 {
			continue
		}

		pkgs := make([]pkgsource.Package, 0, len(names))
		for _, n := range names {
			if pkg, ok := resolved.Packages[n]; ok {
				pkgs = append(pkgs, pkg)
			} else {
				pkgs = append(pkgs, pkgsource.Package{Name: n, Overrides: map[string]pkgsource.PackageOverride{}})
			}
		}

		wg.Add(1)
		go func(src pkgsource.Source, pkgs []pkgsource.Package) {
			defer wg.Done()
			result := p.installForSource(ctx, src, pkgs, composer, execute)
			mu.Lock()
			results[src.Name] = result
			mu.Unlock()
		}(src, pkgs)
	}
	wg.Wait()
	return results
}

func (p *Planner) installForSource(ctx context.Context, src pkgsource.Source, pkgs []pkgsource.Package, composer *compose.Composer, execute bool) InstallOutcome {
	outcome := InstallOutcome{Source: src.Name}

	cmd, err := composer.Compose(src, pkgs, compose.OperationInstall)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	if !execute {
		outcome.Script = cmd
		return outcome
	}

	out, err := p.driver.Run(ctx, InstallTimeout, "sh", "-c", cmd)
	outcome.Ran = true
	outcome.Output = out
	outcome.Err = err
	p.cache.Invalidate(src.Name)
	return outcome
}

// splitNonEmpty splits s by newlines, trims each line, and drops empties.
func splitNonEmpty(s string) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
