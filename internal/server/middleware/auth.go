package middleware

import (
	"net/http"

	"dayplanner-backend/internal/server/respond"
	"dayplanner-backend/internal/session"
)

// RequireSession verifies the session cookie and puts the caller identity in
// the request context. Requests without a valid session get 401; verification
// failures are never distinguished from a missing cookie.
func RequireSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessions.FromRequest(r)
			if id == nil {
				respond.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
