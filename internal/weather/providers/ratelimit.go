package providers

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/i474232898/optimistic-forecast/internal/weather"
)

// RateLimitedProvider waits for a token before every upstream call. A wait
// that outlives the caller's context returns the context error.
type RateLimitedProvider struct {
	next    weather.Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps next with a token bucket. A non-positive
// perSecond disables limiting and returns next unchanged.
func NewRateLimitedProvider(next weather.Provider, perSecond float64, burst int) weather.Provider {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (p *RateLimitedProvider) Direct(ctx context.Context, query string, limit int) ([]weather.GeoLocation, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.next.Direct(ctx, query, limit)
}

func (p *RateLimitedProvider) Reverse(ctx context.Context, lat, lon float64) ([]weather.GeoLocation, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.next.Reverse(ctx, lat, lon)
}

func (p *RateLimitedProvider) Postal(ctx context.Context, code, country string) (weather.GeoLocation, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return weather.GeoLocation{}, err
	}
	return p.next.Postal(ctx, code, country)
}

func (p *RateLimitedProvider) ShortRange(ctx context.Context, lat, lon float64, units weather.Units) (weather.ForecastSeries, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return weather.ForecastSeries{}, err
	}
	return p.next.ShortRange(ctx, lat, lon, units)
}

func (p *RateLimitedProvider) PrimaryDaily(ctx context.Context, lat, lon float64, units weather.Units) (weather.PrimaryDailyResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return weather.PrimaryDailyResponse{}, err
	}
	return p.next.PrimaryDaily(ctx, lat, lon, units)
}

func (p *RateLimitedProvider) LegacyDaily(ctx context.Context, lat, lon float64, units weather.Units, count int) (weather.LegacyDailyResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return weather.LegacyDailyResponse{}, err
	}
	return p.next.LegacyDaily(ctx, lat, lon, units, count)
}
