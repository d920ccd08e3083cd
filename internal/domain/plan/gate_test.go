package plan

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceGateRunsFnOnce(t *testing.T) {
	gate, err := newSourceGate("brew")
	require.NoError(t, err)

	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([][]string, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := gate.Do(context.Background(), func(ctx context.Context) ([]string, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return []string{"bat"}, nil
			})
			require.NoError(t, err)
			results[i] = out
		}(i)
	}

	time.Sleep(20 * time.Millisecond) // let all goroutines reach Do() and queue as waiters
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, []string{"bat"}, r)
	}
}

func TestSourceGateAllowsSecondCallAfterFirstCompletes(t *testing.T) {
	gate, err := newSourceGate("brew")
	require.NoError(t, err)

	_, err = gate.Do(context.Background(), func(ctx context.Context) ([]string, error) {
		return []string{"a"}, nil
	})
	require.NoError(t, err)

	out, err := gate.Do(context.Background(), func(ctx context.Context) ([]string, error) {
		return []string{"b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, out)
}

func TestGatesForReturnsSameGateForSameSource(t *testing.T) {
	gates := NewGates()
	a, err := gates.For("brew")
	require.NoError(t, err)
	b, err := gates.For("brew")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestGatesForReturnsDistinctGatesForDifferentSources(t *testing.T) {
	gates := NewGates()
	a, err := gates.For("brew")
	require.NoError(t, err)
	b, err := gates.For("cargo")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}
