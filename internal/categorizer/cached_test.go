package categorizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/cache"
	"saldo/internal/core"
)

func TestCached(t *testing.T) {
	calls := 0
	fail := false
	next := Func(func(context.Context, string) (core.Category, error) {
		calls++
		if fail {
			return "", errors.New("unavailable")
		}
		return core.CategoryFood, nil
	})
	c := NewCached(next, cache.NewLRUCache[core.Category](10, time.Hour))
	ctx := context.Background()

	got, err := c.Classify(ctx, "Pizza")
	require.NoError(t, err)
	assert.Equal(t, core.CategoryFood, got)

	got, err = c.Classify(ctx, "  pizza ")
	require.NoError(t, err)
	assert.Equal(t, core.CategoryFood, got)
	assert.Equal(t, 1, calls, "second lookup should hit the cache")

	fail = true
	_, err = c.Classify(ctx, "Sushi")
	assert.Error(t, err)
	_, err = c.Classify(ctx, "Sushi")
	assert.Error(t, err)
	assert.Equal(t, 3, calls, "failures must not be cached")
}
