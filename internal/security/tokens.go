package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a session token is malformed, tampered
// with, expired, or signed with the wrong key. Callers treat it as "no
// session" and must never surface partial claims from a failed parse.
var ErrInvalidToken = errors.New("invalid token")

// SessionIdentity is the caller identity embedded in a session token.
type SessionIdentity struct {
	UserID string
	Email  string
	Name   string
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenProvider issues and verifies signed session tokens (HS256 with a
// process-wide secret). There is no server-side session store: a token is
// invalidated only by cookie overwrite or natural expiry, so a stolen
// unexpired token stays valid until it expires.
type TokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenProvider returns a TokenProvider signing with secret. secret must be
// non-empty; config guarantees a marked dev fallback outside production.
func NewTokenProvider(secret, issuer string, ttl time.Duration) (*TokenProvider, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("security: session secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &TokenProvider{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// IssueSession signs a session token for id. Returns the token and its expiry.
func (p *TokenProvider) IssueSession(id SessionIdentity) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: id.Email,
		Name:  id.Name,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// VerifySession parses and verifies tokenString (signature, expiry, issuer).
// Any failure yields ErrInvalidToken; the claims of a failed parse are never
// returned.
func (p *TokenProvider) VerifySession(tokenString string) (SessionIdentity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		return SessionIdentity{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return SessionIdentity{}, ErrInvalidToken
	}
	if p.issuer != "" && claims.Issuer != p.issuer {
		return SessionIdentity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return SessionIdentity{}, ErrInvalidToken
	}
	return SessionIdentity{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// TTL returns the configured session lifetime.
func (p *TokenProvider) TTL() time.Duration {
	return p.ttl
}
