package domain

import (
	"errors"
	"regexp"
	"time"
)

// Org is a billing/administrative container owning one or more
// organization-type workspaces, exactly one marked default.
type Org struct {
	ID        string
	Name      string
	Slug      string
	CreatorID string
	CreatedAt time.Time
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Org) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	if o.Slug == "" || !slugRe.MatchString(o.Slug) {
		return errors.New("slug must be lowercase letters, digits, and hyphens")
	}
	return nil
}
