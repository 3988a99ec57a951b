package providers

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/i474232898/optimistic-forecast/internal/observability"
	"github.com/i474232898/optimistic-forecast/internal/weather"
)

// CachedProvider memoizes successful geocoding lookups. Forecast calls pass
// straight through to the wrapped provider.
type CachedProvider struct {
	weather.Provider
	cache   *cache.Cache
	metrics *observability.Metrics
}

// NewCachedProvider wraps next with a geocoding cache. A non-positive ttl
// disables caching and returns next unchanged.
func NewCachedProvider(next weather.Provider, ttl time.Duration, metrics *observability.Metrics) weather.Provider {
	if ttl <= 0 {
		return next
	}
	return &CachedProvider{
		Provider: next,
		cache:    cache.New(ttl, 2*ttl),
		metrics:  metrics,
	}
}

func (c *CachedProvider) Direct(ctx context.Context, query string, limit int) ([]weather.GeoLocation, error) {
	key := fmt.Sprintf("direct|%s|%d", strings.ToLower(strings.TrimSpace(query)), limit)
	if v, ok := c.lookup("direct", key); ok {
		return slices.Clone(v.([]weather.GeoLocation)), nil
	}
	locs, err := c.Provider.Direct(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, slices.Clone(locs))
	return locs, nil
}

func (c *CachedProvider) Reverse(ctx context.Context, lat, lon float64) ([]weather.GeoLocation, error) {
	key := fmt.Sprintf("reverse|%.4f|%.4f", lat, lon)
	if v, ok := c.lookup("reverse", key); ok {
		return slices.Clone(v.([]weather.GeoLocation)), nil
	}
	locs, err := c.Provider.Reverse(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, slices.Clone(locs))
	return locs, nil
}

func (c *CachedProvider) Postal(ctx context.Context, code, country string) (weather.GeoLocation, error) {
	key := "postal|" + strings.ToUpper(strings.TrimSpace(code)) + "|" + strings.ToUpper(strings.TrimSpace(country))
	if v, ok := c.lookup("postal", key); ok {
		return v.(weather.GeoLocation), nil
	}
	loc, err := c.Provider.Postal(ctx, code, country)
	if err != nil {
		return weather.GeoLocation{}, err
	}
	c.cache.SetDefault(key, loc)
	return loc, nil
}

func (c *CachedProvider) lookup(method, key string) (any, bool) {
	v, ok := c.cache.Get(key)
	result := "miss"
	if ok {
		result = "hit"
	}
	c.metrics.GeocodeCache.WithLabelValues(method, result).Inc()
	return v, ok
}
