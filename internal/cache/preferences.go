package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"silosremeco/backend/internal/domain"
)

const DefaultPreferencesTTL = 5 * time.Minute

type PreferencesSource interface {
	GetPreferences(ctx context.Context) (*domain.PricingPreferences, error)
}

type PreferencesOption func(*PreferencesCache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) PreferencesOption {
	return func(c *PreferencesCache) {
		if now != nil {
			c.now = now
		}
	}
}

// PreferencesCache holds the pricing preferences in force for at most ttl
// after the last successful fetch. Concurrent cold callers share one fetch.
type PreferencesCache struct {
	source PreferencesSource
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu        sync.RWMutex
	value     *domain.PricingPreferences
	fetchedAt time.Time
}

func NewPreferencesCache(source PreferencesSource, ttl time.Duration, opts ...PreferencesOption) *PreferencesCache {
	if ttl <= 0 {
		ttl = DefaultPreferencesTTL
	}
	c := &PreferencesCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPreferences returns the cached preferences, refreshing them when cold.
// The shared refresh runs detached from any one caller's cancellation; each
// caller still stops waiting when its own ctx is done.
func (c *PreferencesCache) GetPreferences(ctx context.Context) (*domain.PricingPreferences, error) {
	if value, ok := c.warm(); ok {
		return value, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("preferences", func() (any, error) {
		if value, ok := c.warm(); ok {
			return value, nil
		}
		prefs, err := c.source.GetPreferences(fetchCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.value = prefs
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return prefs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.PricingPreferences), nil
	}
}

func (c *PreferencesCache) warm() (*domain.PricingPreferences, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil || c.now().Sub(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.value, true
}
