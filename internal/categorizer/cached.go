package categorizer

import (
	"context"
	"strings"

	"saldo/internal/cache"
	"saldo/internal/core"
)

// Cached memoises successful classifications. Failures are not cached so a
// transient model outage does not pin descriptions to the fallback label.
type Cached struct {
	next  Categorizer
	cache cache.Cache[core.Category]
}

func NewCached(next Categorizer, c cache.Cache[core.Category]) *Cached {
	return &Cached{next: next, cache: c}
}

func (c *Cached) Classify(ctx context.Context, description string) (core.Category, error) {
	key := strings.ToLower(strings.TrimSpace(description))
	if cat, ok := c.cache.Get(key); ok {
		return cat, nil
	}
	cat, err := c.next.Classify(ctx, description)
	if err != nil {
		return "", err
	}
	if cat.IsKnown() {
		c.cache.Set(key, cat)
	}
	return cat, nil
}
