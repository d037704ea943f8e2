package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/account-weather/internal/weather"
)

// RateLimitedProvider wraps a weather.Provider with a token bucket so that
// widget refreshes and scheduled warm-ups together stay under the upstream quota.
type RateLimitedProvider struct {
	provider weather.Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider creates a new rate limited provider.
// rps may be fractional for less than one request per second; burst is the
// maximum burst size allowed.
func NewRateLimitedProvider(provider weather.Provider, rps float64, burst int) *RateLimitedProvider {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Name returns the wrapped provider's name so aggregated snapshots keep
// reporting the real source.
func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

// Fetch waits for limiter permission or context cancellation, then forwards.
func (r *RateLimitedProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.ProviderReading{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.Fetch(ctx, loc)
}

var _ weather.Provider = (*RateLimitedProvider)(nil)
