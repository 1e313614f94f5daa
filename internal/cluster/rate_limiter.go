package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles Kubernetes API calls. An rps of 0 disables
// throttling.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows rps calls per second with a burst of rps
func NewRateLimiter(rps int) *RateLimiter {
	if rps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), rps)}
}

// Wait blocks until the named call may proceed
func (r *RateLimiter) Wait(ctx context.Context, call string) error {
	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", call, err)
	}
	if waited := time.Since(start); waited >= time.Millisecond {
		slog.Debug("kubernetes call throttled",
			slog.String("call", call),
			slog.Duration("waited", waited),
		)
	}
	return nil
}
