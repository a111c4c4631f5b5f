package middleware

import (
	"net"
	"net/http"
)

// ClientIP stores the request's client IP in the context for the audit
// logger. Runs after chi's RealIP so RemoteAddr already reflects
// X-Forwarded-For when present.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), ip)))
	})
}
