// Package session manages the cookie-carried session: issuing, verifying,
// and clearing the signed bearer token that identifies the caller.
package session

import (
	"net/http"
	"time"

	"dayplanner-backend/internal/security"
)

// CookieName is the session cookie. HTTP-only and SameSite-Lax; never
// readable by page scripts.
const CookieName = "dp_session"

// Manager issues and verifies cookie sessions. Sessions are not stored
// server-side: clearing only overwrites the client cookie, so a stolen
// unexpired token stays valid until natural expiry.
type Manager struct {
	tokens *security.TokenProvider
	secure bool
}

// NewManager returns a Manager. secure controls the cookie Secure attribute
// (true in production).
func NewManager(tokens *security.TokenProvider, secure bool) *Manager {
	return &Manager{tokens: tokens, secure: secure}
}

// Issue signs a session token for id and sets the session cookie on w.
func (m *Manager) Issue(w http.ResponseWriter, id security.SessionIdentity) error {
	token, expiresAt, err := m.tokens.IssueSession(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.tokens.TTL() / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear overwrites the session cookie with an immediately-expired value.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the verified identity carried by the request's session
// cookie, or nil when the cookie is absent, malformed, tampered with, or
// expired. Verification failures are swallowed into "no session".
func (m *Manager) FromRequest(r *http.Request) *security.SessionIdentity {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	id, err := m.tokens.VerifySession(c.Value)
	if err != nil {
		return nil
	}
	return &id
}
