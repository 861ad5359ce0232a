package weather

import (
	"context"
	"fmt"

	"krishisense/internal/model"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token bucket limiter
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider creates a new rate limited provider.
// rps may be fractional; a non-positive rps disables limiting.
func NewRateLimitedProvider(provider Provider, rps float64, burst int) *RateLimitedProvider {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Fetch waits for a token, then forwards to the wrapped provider
func (r *RateLimitedProvider) Fetch(ctx context.Context, lat, lon float64) (*model.WeatherSnapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &UnavailableError{Message: "rate limit wait canceled", Err: fmt.Errorf("weather rate limit: %w", err)}
	}
	return r.provider.Fetch(ctx, lat, lon)
}

var _ Provider = (*RateLimitedProvider)(nil)
