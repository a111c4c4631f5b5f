package rbac

import (
	"context"
	"errors"
	"fmt"

	orgdomain "dayplanner-backend/internal/organization/domain"
	orgservice "dayplanner-backend/internal/organization/service"
	wsdomain "dayplanner-backend/internal/workspace/domain"
)

// Workspace-scope failures. Org-scope checks reuse the organization service
// sentinels so handlers map a single taxonomy.
var (
	ErrNotWorkspaceMember        = errors.New("not a member of this workspace")
	ErrWorkspaceRoleInsufficient = errors.New("workspace role insufficient")
)

// OrgMemberGetter resolves a user's member row in an org. Satisfied by the
// organization member repository.
type OrgMemberGetter interface {
	GetByOrgAndUser(ctx context.Context, orgID, userID string) (*orgdomain.OrgMember, error)
}

// WorkspaceMembershipGetter resolves a user's membership in a workspace.
// Satisfied by the workspace membership repository.
type WorkspaceMembershipGetter interface {
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID string) (*wsdomain.Membership, error)
}

// RequireOrgRole ensures the caller is an active org member holding one of the
// given roles. Returns the member row on success.
func RequireOrgRole(ctx context.Context, getter OrgMemberGetter, orgID, userID string, roles ...orgdomain.Role) (*orgdomain.OrgMember, error) {
	m, err := getter.GetByOrgAndUser(ctx, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve org member: %w", err)
	}
	if m == nil {
		return nil, orgservice.ErrNotOrgMember
	}
	if m.Status != orgdomain.MemberStatusActive {
		return nil, orgservice.ErrMemberDisabled
	}
	for _, r := range roles {
		if m.Role == r {
			return m, nil
		}
	}
	return nil, orgservice.ErrOrgRoleInsufficient
}

// RequireOrgManager ensures the caller may mutate org state (owner or admin).
func RequireOrgManager(ctx context.Context, getter OrgMemberGetter, orgID, userID string) (*orgdomain.OrgMember, error) {
	return RequireOrgRole(ctx, getter, orgID, userID, orgdomain.RoleOwner, orgdomain.RoleAdmin)
}

// RequireWorkspaceRole ensures the caller belongs to the workspace with at
// least the given role. Returns the membership on success.
func RequireWorkspaceRole(ctx context.Context, getter WorkspaceMembershipGetter, userID, workspaceID string, min wsdomain.Role) (*wsdomain.Membership, error) {
	m, err := getter.GetByUserAndWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace membership: %w", err)
	}
	if m == nil {
		return nil, ErrNotWorkspaceMember
	}
	if !m.Role.AtLeast(min) {
		return nil, ErrWorkspaceRoleInsufficient
	}
	return m, nil
}
