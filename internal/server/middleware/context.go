package middleware

import (
	"context"

	"dayplanner-backend/internal/security"
)

type contextKey struct{ name string }

var (
	identityKey = contextKey{"identity"}
	clientIPKey = contextKey{"client_ip"}
)

// WithIdentity returns a context carrying the verified session identity.
// Handlers read it via GetIdentity.
func WithIdentity(ctx context.Context, id *security.SessionIdentity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the session identity from context and true if set;
// otherwise nil, false.
func GetIdentity(ctx context.Context) (*security.SessionIdentity, bool) {
	v, ok := ctx.Value(identityKey).(*security.SessionIdentity)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// WithClientIP returns a context carrying the request's client IP. Set by the
// ClientIP middleware; read by the audit logger.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns the client IP from context, or "" if unset.
func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
