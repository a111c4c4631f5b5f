package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"dayplanner-backend/internal/server/respond"
)

// CSRFCookieName is the double-submit cookie. Unlike the session cookie it is
// readable by page scripts, which echo its value back in CSRFHeaderName.
const CSRFCookieName = "dp_csrf"

// CSRFHeaderName is the request header that must match the cookie on every
// mutating API call.
const CSRFHeaderName = "X-CSRF-Token"

// CSRF implements double-submit token validation. Safe methods get a token
// cookie when one is absent; rotation is lazy, an existing token is never
// replaced on use. Mutating requests under /api must carry a header equal to
// the cookie and are rejected with 403 before authentication or any handler
// logic runs.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if _, err := r.Cookie(CSRFCookieName); err != nil {
					token, err := newToken()
					if err != nil {
						respond.Error(w, http.StatusInternalServerError, "internal error")
						return
					}
					http.SetCookie(w, &http.Cookie{
						Name:     CSRFCookieName,
						Value:    token,
						Path:     "/",
						Secure:   secure,
						SameSite: http.SameSiteStrictMode,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			c, err := r.Cookie(CSRFCookieName)
			if err != nil || c.Value == "" {
				respond.Error(w, http.StatusForbidden, "missing CSRF token")
				return
			}
			header := r.Header.Get(CSRFHeaderName)
			if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(c.Value)) != 1 {
				respond.Error(w, http.StatusForbidden, "invalid CSRF token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
