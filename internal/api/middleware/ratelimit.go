package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/amlaw/client-portal/internal/api/response"
	"github.com/rs/zerolog/log"
)

// Limiter is satisfied by the redis and in-memory rate limiters
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
}

// KeyFunc derives the rate-limit key of a request. An empty key skips
// limiting.
type KeyFunc func(r *http.Request) string

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	limiter Limiter
	key     KeyFunc
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter Limiter, key KeyFunc) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, key: key}
}

// Limit rejects requests over the limit with 429
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.key(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, resetTime, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			// fail open
			log.Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.UTC().Format(time.RFC3339))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(time.Until(resetTime).Seconds()))))
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ByRemoteIP keys requests on the client address set by RealIP
func ByRemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BySession keys requests on the authenticated session's client, labelled
// through label so raw identifiers never reach the limiter backend.
func BySession(label func(clientID string) string) KeyFunc {
	return func(r *http.Request) string {
		session, ok := GetSession(r.Context())
		if !ok {
			return ""
		}
		return label(session.ClientID)
	}
}
