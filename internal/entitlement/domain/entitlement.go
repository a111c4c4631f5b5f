package domain

import (
	"errors"
	"time"
)

// Plan keys of the built-in catalog. The catalog is admin-editable but these
// three keys are always present after seeding.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Well-known feature and limit keys. Unknown keys read as absent (feature
// disallowed, limit 0) rather than erroring, so the catalog can grow without
// code changes.
const (
	FeatureOrgWorkspaces  = "org_workspaces"
	FeatureSharedPlanning = "shared_planning"
	FeatureAPIAccess      = "api_access"

	LimitPersonalWorkspaces = "personal_workspaces"
	LimitOrgMembers         = "org_members"
	LimitTasksPerDay        = "tasks_per_day"
)

// UnlimitedLimit is the limit value reported for global admins; effectively
// unbounded for any realistic usage count.
const UnlimitedLimit = 1 << 30

// Plan is one entry of the subscription plan catalog.
type Plan struct {
	Key        string
	Name       string
	PriceCents int
	Features   map[string]bool
	Limits     map[string]int
	UpdatedAt  time.Time
}

// Validate validates the plan for persistence. Negative limits are rejected;
// unknown feature/limit keys are allowed (forward compatibility).
func (p *Plan) Validate() error {
	if p.Key == "" {
		return errors.New("plan key is required")
	}
	if p.Name == "" {
		return errors.New("plan name is required")
	}
	for k, v := range p.Limits {
		if v < 0 {
			return errors.New("limit " + k + " must be non-negative")
		}
	}
	return nil
}

// Entitlements is the resolved feature/limit set for one user. Derived per
// request from User.IsAdmin or the plan catalog; never persisted.
type Entitlements struct {
	PlanKey  string
	PlanName string
	Features map[string]bool
	Limits   map[string]int
	IsAdmin  bool
}

// FeatureAllowed reports whether the feature is enabled. A missing key means
// disallowed, not an error. Admin entitlements allow everything.
func (e *Entitlements) FeatureAllowed(key string) bool {
	if e == nil {
		return false
	}
	if e.IsAdmin {
		return true
	}
	return e.Features[key]
}

// LimitValue returns the numeric limit for key, 0 if absent. Admin
// entitlements report UnlimitedLimit for every key.
func (e *Entitlements) LimitValue(key string) int {
	if e == nil {
		return 0
	}
	if e.IsAdmin {
		return UnlimitedLimit
	}
	return e.Limits[key]
}

// DefaultFreePlan is the hard-coded most-restrictive fallback used when a
// user's plan key is missing from the catalog. Entitlement computation
// degrades to this rather than failing the request.
func DefaultFreePlan() *Plan {
	return &Plan{
		Key:        PlanFree,
		Name:       "Free",
		PriceCents: 0,
		Features: map[string]bool{
			FeatureOrgWorkspaces:  false,
			FeatureSharedPlanning: false,
			FeatureAPIAccess:      false,
		},
		Limits: map[string]int{
			LimitPersonalWorkspaces: 1,
			LimitOrgMembers:         3,
			LimitTasksPerDay:        20,
		},
	}
}
