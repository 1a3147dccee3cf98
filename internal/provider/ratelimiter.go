package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket guarding the free CoinGecko tier. It only
// ever delays a call; it never retries one.
type RateLimiter struct {
	mu             sync.Mutex
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
}

// NewRateLimiter creates a limiter holding maxTokens, refilled one token per refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done. A nil limiter never blocks.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return ctx.Err()
	}
	for {
		wait, ok := r.take(time.Now())
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take consumes a token, or reports how long until the next one is due.
func (r *RateLimiter) take(now time.Time) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refillInterval > 0 {
		if n := int(now.Sub(r.lastRefill) / r.refillInterval); n > 0 {
			r.tokens = min(r.tokens+n, r.maxTokens)
			r.lastRefill = r.lastRefill.Add(time.Duration(n) * r.refillInterval)
		}
	} else {
		r.tokens = r.maxTokens
	}

	if r.tokens > 0 {
		r.tokens--
		return 0, true
	}
	return r.lastRefill.Add(r.refillInterval).Sub(now), false
}
