package infra

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces requests to one upstream host.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter allows n requests per window, with a burst of n.
func NewRateLimiter(n int, per time.Duration) *RateLimiter {
	if n <= 0 {
		return &RateLimiter{lim: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{lim: rate.NewLimiter(rate.Every(per/time.Duration(n)), n)}
}

// Wait blocks until a request slot is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return ctx.Err()
	}
	return rl.lim.Wait(ctx)
}
