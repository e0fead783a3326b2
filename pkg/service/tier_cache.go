package service

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// CachedTierLookup fronts a TierLookup with a bounded LRU.
// Entries expire after TTL so a tier change is picked up without a restart.
type CachedTierLookup struct {
	next  TierLookup
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

type cachedTier struct {
	tier      Tier
	expiresAt time.Time
}

func NewCachedTierLookup(next TierLookup, size int, ttl time.Duration) (*CachedTierLookup, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create tier cache: %w", err)
	}
	return &CachedTierLookup{
		next:  next,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

func (c *CachedTierLookup) GetTier(ctx context.Context, userID string) (Tier, error) {
	if v, ok := c.cache.Get(userID); ok {
		entry := v.(cachedTier)
		if c.now().Before(entry.expiresAt) {
			return entry.tier, nil
		}
		c.cache.Remove(userID)
	}

	tier, err := c.next.GetTier(ctx, userID)
	if err != nil {
		// errors are never cached
		return "", err
	}

	c.cache.Add(userID, cachedTier{tier: tier, expiresAt: c.now().Add(c.ttl)})
	return tier, nil
}

// Invalidate drops the cached tier of a user, used right after SetTier.
func (c *CachedTierLookup) Invalidate(userID string) {
	c.cache.Remove(userID)
}
