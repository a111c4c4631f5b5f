package domain

import (
	"strings"
	"time"
)

// InviteTTL is how long an invite stays acceptable after creation.
const InviteTTL = 7 * 24 * time.Hour

// Invite is a single-use, time-bounded token granting org membership upon
// acceptance by a session whose email matches case-insensitively.
//
// An invite is pending until accepted (AcceptedAt set, terminal) or until
// now passes ExpiresAt (terminal, derived, never stored). There is no revoked
// state.
type Invite struct {
	ID         string
	OrgID      string
	Email      string
	Role       Role
	Token      string
	ExpiresAt  time.Time
	AcceptedAt *time.Time // nil while pending
	CreatedAt  time.Time
}

// Accepted reports whether the invite has already been consumed.
func (i *Invite) Accepted() bool {
	return i.AcceptedAt != nil
}

// Expired reports whether the invite passed its expiry at the given time.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// EmailMatches compares the invitee email against an accepting session's
// email, case-insensitively.
func (i *Invite) EmailMatches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(i.Email), strings.TrimSpace(email))
}
