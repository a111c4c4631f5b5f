package domain

import "time"

// Membership links a user to a workspace with a role. It is the sole
// authorization source for workspace-scoped operations.
type Membership struct {
	ID          string
	UserID      string
	WorkspaceID string
	Role        Role
	CreatedAt   time.Time
}

type Role string

const (
	RoleMember     Role = "member"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

var roleRank = map[Role]int{
	RoleMember:     1,
	RoleSupervisor: 2,
	RoleAdmin:      3,
}

// AtLeast reports whether r satisfies the minimum role min. Unknown roles
// never satisfy anything.
func (r Role) AtLeast(min Role) bool {
	rr, ok := roleRank[r]
	mr, mok := roleRank[min]
	return ok && mok && rr >= mr
}
