package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token bucket
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// NewRateLimiter refills requestsPerMinute tokens a minute on top of burst
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Limit(float64(requestsPerMinute) / 60),
		burst:     requestsPerMinute + burst,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// Allow checks if a request should be allowed based on rate limits
// Returns (allowed, remaining, resetTime, error)
func (r *RateLimiter) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) > maxIdle {
		for k, v := range r.visitors {
			if now.Sub(v.lastSeen) > maxIdle {
				delete(r.visitors, k)
			}
		}
		r.lastSweep = now
	}

	v, ok := r.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.visitors[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)
	remaining := max(int(tokens), 0)

	reset := now
	if tokens < 1 && r.limit > 0 {
		reset = now.Add(time.Duration((1 - tokens) / float64(r.limit) * float64(time.Second)))
	}

	return allowed, remaining, reset, nil
}
