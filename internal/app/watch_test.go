package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/santa/internal/domain/config"
)

func newTestWatcher(t *testing.T, onReload func(*config.ResolvedConfig), onError func(error), opts ...WatcherOption) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	loader := &config.Loader{HomeDir: dir, WorkDir: dir}
	opts = append([]WatcherOption{WithPollInterval(10 * time.Millisecond), WithDebounce(20 * time.Millisecond)}, opts...)
	w, err := NewWatcher(loader, onReload, onError, opts...)
	require.NoError(t, err)
	return w, loader.UserConfigPath()
}

func writeConfig(t *testing.T, path string, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestWatcherReloadsOnceAfterDebouncedBurst(t *testing.T) {
	var mu sync.Mutex
	var reloads int

	w, path := newTestWatcher(t, func(_ *config.ResolvedConfig) {
		mu.Lock()
		reloads++
		mu.Unlock()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	body := "sources =\n  brew =\n    shell_command = brew\n    check_command = brew list\n"
	writeConfig(t, path, body)
	time.Sleep(15 * time.Millisecond)
	writeConfig(t, path, body+"\n")
	time.Sleep(15 * time.Millisecond)
	writeConfig(t, path, body+"\n\n")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reloads == 1
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, reloads)
}

func TestWatcherInvokesOnErrorForInvalidConfig(t *testing.T) {
	var mu sync.Mutex
	var errs int

	w, path := newTestWatcher(t, nil, func(_ error) {
		mu.Lock()
		errs++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	writeConfig(t, path, "sources =\n  brew =\n    shell_command = brew\n")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return errs == 1
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	<-done
}

func TestWatcherStopEndsRunLoop(t *testing.T) {
	w, _ := newTestWatcher(t, nil, nil)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestWatcherStateReflectsLifecycle(t *testing.T) {
	w, _ := newTestWatcher(t, func(_ *config.ResolvedConfig) {}, nil)
	assert.Equal(t, "idle", w.State())
}
