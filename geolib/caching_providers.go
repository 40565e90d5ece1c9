package geolib

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dgraph-io/ristretto"
)

type cachingRichProvider struct {
	RichProvider

	cache *ristretto.Cache
	ttl   time.Duration
}

func (c cachingRichProvider) Lookup(ctx context.Context, ip net.IP) (*RichPayload, error) {
	cacheKey := ip.String()

	if value, ok := c.cache.Get(cacheKey); ok {
		return value.(*RichPayload), nil
	}

	result, err := c.RichProvider.Lookup(ctx, ip)
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(cacheKey, result, 1, c.ttl)

	return result, nil
}

// NewCachingRichProvider wraps a provider with an in-memory cache of
// successful lookups. Cache keeps at most itemsCount entries, each for
// ttl.
func NewCachingRichProvider(provider RichProvider, itemsCount uint, ttl time.Duration) (RichProvider, error) {
	cacheConfig := &ristretto.Config{
		MaxCost:     int64(itemsCount),
		NumCounters: 10 * int64(itemsCount),
		Metrics:     false,
		BufferItems: 64,
	}

	cache, err := ristretto.NewCache(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot create a cache: %w", err)
	}

	return cachingRichProvider{
		RichProvider: provider,
		cache:        cache,
		ttl:          ttl,
	}, nil
}
