package domainerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSecurityError(t *testing.T) {
	err := New(KindSecurity, "path traversal in package name")
	assert.True(t, IsSecurityError(err))
	assert.False(t, IsSecurityError(New(KindTimeout, "x")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(KindTimeout, "x")))
	assert.True(t, IsRetryable(New(KindIO, "x")))
	assert.False(t, IsRetryable(New(KindSecurity, "x")))
	assert.False(t, IsRetryable(New(KindConfig, "x")))
}

func TestCategoryWalksWrapChain(t *testing.T) {
	base := New(KindCache, "cache eviction race")
	wrapped := fmt.Errorf("plan for brew: %w", base)
	assert.Equal(t, KindCache, Category(wrapped))
}

func TestErrorIsComparesByKind(t *testing.T) {
	a := New(KindTimeout, "a")
	b := New(KindTimeout, "b")
	c := New(KindIO, "c")
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestListAccumulates(t *testing.T) {
	l := NewList()
	assert.False(t, l.HasErrors())
	l.AddValidation("sources", "must not be empty")
	l.AddValidation("packages.ripgrep", "references unknown source 'foo'")
	assert.True(t, l.HasErrors())
	assert.Len(t, l.Errors(), 2)
	assert.Contains(t, l.Error(), "2 errors occurred")
}
