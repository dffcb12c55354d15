package alerts

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"lightwatch/internal/types"
)

// preferenceReader resolves the effective preferences for a user.
type preferenceReader interface {
	get(ctx context.Context, userID string) (types.NotificationPreferences, error)
}

// storeReader substitutes defaults for users without a stored row and
// rejects rows that fail validation.
type storeReader struct {
	store PreferenceStore
}

func (r storeReader) get(ctx context.Context, userID string) (types.NotificationPreferences, error) {
	p, err := r.store.GetPreferences(ctx, userID)
	if err != nil {
		return types.NotificationPreferences{}, err
	}
	if p == nil {
		return types.DefaultPreferences(userID), nil
	}
	if err := types.ValidatePreferences(*p); err != nil {
		return types.NotificationPreferences{}, fmt.Errorf("stored preferences are invalid: %w", err)
	}
	return *p, nil
}

// cycleCache memoizes preferences for the lifetime of one cycle. Entries never
// expire; the cache is discarded with the cycle. Concurrent misses for the
// same user collapse into one store read.
type cycleCache struct {
	next  preferenceReader
	items *cache.Cache
	group singleflight.Group
}

func newCycleCache(next preferenceReader) *cycleCache {
	return &cycleCache{
		next:  next,
		items: cache.New(cache.NoExpiration, 0),
	}
}

func (c *cycleCache) get(ctx context.Context, userID string) (types.NotificationPreferences, error) {
	if v, ok := c.items.Get(userID); ok {
		return v.(types.NotificationPreferences), nil
	}
	v, err, _ := c.group.Do(userID, func() (any, error) {
		if v, ok := c.items.Get(userID); ok {
			return v, nil
		}
		p, err := c.next.get(ctx, userID)
		if err != nil {
			return nil, err
		}
		c.items.Set(userID, p, cache.NoExpiration)
		return p, nil
	})
	if err != nil {
		return types.NotificationPreferences{}, err
	}
	return v.(types.NotificationPreferences), nil
}
