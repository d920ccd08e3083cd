package plan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetMissReturnsFalse(t *testing.T) {
	c := NewCache(time.Minute, 10, nil)
	_, ok := c.Get("brew")
	assert.False(t, ok)
}

func TestCachePutThenGetRoundTrips(t *testing.T) {
	c := NewCache(time.Minute, 10, nil)
	c.Put(context.Background(), "brew", []string{"bat", "ripgrep"})

	got, ok := c.Get("brew")
	require.True(t, ok)
	assert.Equal(t, []string{"bat", "ripgrep"}, got)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	c := NewCache(10*time.Millisecond, 10, nil)
	c.Put(context.Background(), "brew", []string{"bat"})

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("brew")
	assert.False(t, ok)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(time.Minute, 2, nil)
	c.Put(context.Background(), "brew", []string{"a"})
	c.Put(context.Background(), "cargo", []string{"b"})
	c.Put(context.Background(), "apt", []string{"c"}) // evicts brew (LRU)

	_, ok := c.Get("brew")
	assert.False(t, ok)

	_, ok = c.Get("cargo")
	assert.True(t, ok)
	_, ok = c.Get("apt")
	assert.True(t, ok)
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	c := NewCache(time.Minute, 2, nil)
	c.Put(context.Background(), "brew", []string{"a"})
	c.Put(context.Background(), "cargo", []string{"b"})

	c.Get("brew") // brew is now most-recently-used

	c.Put(context.Background(), "apt", []string{"c"}) // evicts cargo, not brew

	_, ok := c.Get("cargo")
	assert.False(t, ok)
	_, ok = c.Get("brew")
	assert.True(t, ok)
}

func TestCacheInvalidateRemovesEntry(t *testing.T) {
	c := NewCache(time.Minute, 10, nil)
	c.Put(context.Background(), "brew", []string{"a"})
	c.Invalidate("brew")

	_, ok := c.Get("brew")
	assert.False(t, ok)
}

func TestCacheClearRemovesEverything(t *testing.T) {
	c := NewCache(time.Minute, 10, nil)
	c.Put(context.Background(), "brew", []string{"a"})
	c.Put(context.Background(), "cargo", []string{"b"})
	c.Clear()

	_, ok := c.Get("brew")
	assert.False(t, ok)
	_, ok = c.Get("cargo")
	assert.False(t, ok)
}

func TestNewCacheAppliesDefaults(t *testing.T) {
	c := NewCache(0, 0, nil)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
	assert.Equal(t, DefaultCacheCapacity, c.capacity)
}
