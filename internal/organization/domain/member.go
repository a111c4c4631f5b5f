package domain

import "time"

// OrgMember links a user to an organization with a role and status. Distinct
// from a workspace membership: the org role governs org-level actions
// (inviting, creating workspaces), not per-workspace access.
type OrgMember struct {
	ID        string
	OrgID     string
	UserID    string
	Role      Role
	Status    MemberStatus
	CreatedAt time.Time
}

type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleMember     Role = "member"
)

// CanManage reports whether the role may mutate org membership (invite,
// add member, create org workspaces).
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusDisabled MemberStatus = "disabled"
)
