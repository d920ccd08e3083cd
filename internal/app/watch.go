package app

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/santa/internal/domain/config"
	"github.com/felixgeelhaar/santa/internal/ports"
)

// Default polling cadence and debounce window for Watcher; spec §4.L calls
// for a short debounce so a burst of saves from an editor collapses into a
// single reload.
const (
	DefaultPollInterval = time.Second
	DefaultDebounce     = 250 * time.Millisecond
)

const (
	watchEventChange    = "CHANGE_DETECTED"
	watchEventDebounced = "DEBOUNCE_FIRED"
	watchEventReloadOK  = "RELOAD_OK"
	watchEventReloadErr = "RELOAD_FAILED"
)

type watchContext struct{}

// Watcher polls the user and project configuration layer files for
// changes and, once a burst of changes settles, reloads and republishes
// the resolved configuration (§4.L).
//
// The debounce and "is a reload already pending" decisions are driven by
// timer and mu, not by reading the statekit machine's state back: the gate
// in internal/domain/plan (gate.go) found that Interpreter.Send is
// processed on its own schedule, so the machine here is for observable
// status only (see State) and is never consulted to decide what happens
// next.
type Watcher struct {
	loader   *config.Loader
	poll     time.Duration
	debounce time.Duration
	onReload func(*config.ResolvedConfig)
	onError  func(error)
	logger   ports.Logger

	interp *statekit.Interpreter[watchContext]

	mu      sync.Mutex
	timer   *time.Timer
	mtimes  map[string]time.Time
	stopCh  chan struct{}
	stopped bool
}

// WatcherOption configures optional Watcher behavior.
type WatcherOption func(*Watcher)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.poll = d }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatcherLogger attaches a logger; nil (the default) disables logging.
func WithWatcherLogger(l ports.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher creates a Watcher that reloads loader's configuration and
// invokes onReload whenever the resolved user or project layer changes.
// onError, if non-nil, is invoked whenever a reload fails; the watcher
// keeps polling afterward rather than giving up.
func NewWatcher(loader *config.Loader, onReload func(*config.ResolvedConfig), onError func(error), opts ...WatcherOption) (*Watcher, error) {
	machine, err := statekit.NewMachine[watchContext]("config-watcher").
		WithInitial("idle").
		WithContext(watchContext{}).
		State("idle").
		On(watchEventChange).Target("pending").Done().
		State("pending").
		On(watchEventChange).Target("pending").
		On(watchEventDebounced).Target("reloading").Done().
		State("reloading").
		On(watchEventReloadOK).Target("idle").
		On(watchEventReloadErr).Target("error").Done().
		State("error").
		On(watchEventChange).Target("pending").Done().
		Build()
	if err != nil {
		return nil, err
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()

	w := &Watcher{
		loader:   loader,
		poll:     DefaultPollInterval,
		debounce: DefaultDebounce,
		onReload: onReload,
		onError:  onError,
		interp:   interp,
		mtimes:   map[string]time.Time{},
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// State returns the watcher's current observable state (idle, pending,
// reloading, or error) for diagnostics; never read back to drive behavior.
func (w *Watcher) State() string {
	return string(w.interp.State().Value)
}

// Run polls until ctx is cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.snapshotMTimes()

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			if w.checkForChanges() {
				w.scheduleReload(ctx)
			}
		}
	}
}

// Stop ends the Run loop and cancels any pending debounced reload.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.stopCh)
}

func (w *Watcher) watchedPaths() []string {
	return []string{w.loader.UserConfigPath(), w.loader.ProjectConfigPath()}
}

func (w *Watcher) snapshotMTimes() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.watchedPaths() {
		if info, err := os.Stat(p); err == nil {
			w.mtimes[p] = info.ModTime()
		}
	}
}

// checkForChanges compares the watched paths' current modification times
// (and existence) against the last snapshot, updating the snapshot as it
// goes, and reports whether anything changed.
func (w *Watcher) checkForChanges() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := false
	for _, p := range w.watchedPaths() {
		info, err := os.Stat(p)
		if err != nil {
			if _, existed := w.mtimes[p]; existed {
				delete(w.mtimes, p)
				changed = true
			}
			continue
		}
		if last, ok := w.mtimes[p]; !ok || info.ModTime().After(last) {
			w.mtimes[p] = info.ModTime()
			changed = true
		}
	}
	return changed
}

// scheduleReload restarts the debounce timer; a burst of changes within
// w.debounce of each other collapses into a single reload.
func (w *Watcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sendEvent(watchEventChange)

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.sendEvent(watchEventDebounced)
		w.reload(ctx)
	})
}

func (w *Watcher) reload(ctx context.Context) {
	resolved, err := w.loader.Load(nil)
	if err != nil {
		w.sendEvent(watchEventReloadErr)
		if w.logger != nil {
			w.logger.Error(ctx, "configuration reload failed", ports.F("error", err.Error()))
		}
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	w.sendEvent(watchEventReloadOK)
	if w.logger != nil {
		w.logger.Info(ctx, "configuration reloaded", ports.F("source_count", len(resolved.SourceOrder)))
	}
	if w.onReload != nil {
		w.onReload(resolved)
	}
}

func (w *Watcher) sendEvent(event string) {
	w.interp.Send(statekit.Event{Type: event})
}
