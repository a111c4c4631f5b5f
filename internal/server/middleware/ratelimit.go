package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dayplanner-backend/internal/ratelimit"
	"dayplanner-backend/internal/server/respond"
)

// denyLogLimiter throttles rate-limit deny logs so an abuser cannot flood the
// log stream.
var denyLogLimiter = rate.Sometimes{First: 10, Interval: 10 * time.Second}

// RateLimit denies requests over the limiter's budget with 429 and a
// Retry-After header. keyFn derives the limiter key from the request
// (e.g. "login:" + client IP).
func RateLimit(limiter ratelimit.Limiter, keyFn func(*http.Request) string, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			d := limiter.Allow(key)
			if !d.Allowed {
				retryAfter := int(time.Until(d.ResetAt).Seconds() + 1)
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				denyLogLimiter.Do(func() {
					logger.Warn("rate limit exceeded",
						zap.String("key", key),
						zap.Time("reset_at", d.ResetAt))
				})
				respond.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIPKey returns a keyFn prefixing the request's client IP, e.g.
// ClientIPKey("login") → "login:203.0.113.9". Relies on chi's RealIP
// middleware having normalized RemoteAddr; an address without a port
// (RealIP's output for a forwarded client) is used as-is.
func ClientIPKey(prefix string) func(*http.Request) string {
	return func(r *http.Request) string {
		host := r.RemoteAddr
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		return prefix + ":" + host
	}
}
