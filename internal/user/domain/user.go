package domain

import (
	"errors"
	"strings"
	"time"
)

// User is the core user entity. Email is unique case-insensitively; the
// stored casing is preserved for display, lookups fold to lower case.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	PlanKey      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail folds an email for lookup and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.PlanKey == "" {
		u.PlanKey = "free"
	}
	return nil
}
