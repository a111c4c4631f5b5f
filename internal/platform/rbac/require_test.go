package rbac

import (
	"context"
	"errors"
	"testing"

	orgdomain "dayplanner-backend/internal/organization/domain"
	orgservice "dayplanner-backend/internal/organization/service"
	wsdomain "dayplanner-backend/internal/workspace/domain"
)

type mockOrgMemberGetter struct {
	members map[string]*orgdomain.OrgMember
	err     error
}

func (m *mockOrgMemberGetter) GetByOrgAndUser(ctx context.Context, orgID, userID string) (*orgdomain.OrgMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members[orgID+":"+userID], nil
}

type mockMembershipGetter struct {
	memberships map[string]*wsdomain.Membership
}

func (m *mockMembershipGetter) GetByUserAndWorkspace(ctx context.Context, userID, workspaceID string) (*wsdomain.Membership, error) {
	return m.memberships[userID+":"+workspaceID], nil
}

func TestRequireOrgManager_OwnerAndAdmin(t *testing.T) {
	getter := &mockOrgMemberGetter{members: map[string]*orgdomain.OrgMember{
		"org-1:user-1": {OrgID: "org-1", UserID: "user-1", Role: orgdomain.RoleOwner, Status: orgdomain.MemberStatusActive},
		"org-1:user-2": {OrgID: "org-1", UserID: "user-2", Role: orgdomain.RoleAdmin, Status: orgdomain.MemberStatusActive},
	}}

	for _, userID := range []string{"user-1", "user-2"} {
		m, err := RequireOrgManager(context.Background(), getter, "org-1", userID)
		if err != nil {
			t.Fatalf("RequireOrgManager(%s): %v", userID, err)
		}
		if m.UserID != userID {
			t.Errorf("user_id = %q, want %q", m.UserID, userID)
		}
	}
}

func TestRequireOrgManager_MemberRoleRejected(t *testing.T) {
	getter := &mockOrgMemberGetter{members: map[string]*orgdomain.OrgMember{
		"org-1:user-1": {OrgID: "org-1", UserID: "user-1", Role: orgdomain.RoleMember, Status: orgdomain.MemberStatusActive},
	}}

	_, err := RequireOrgManager(context.Background(), getter, "org-1", "user-1")
	if !errors.Is(err, orgservice.ErrOrgRoleInsufficient) {
		t.Fatalf("err = %v, want ErrOrgRoleInsufficient", err)
	}
}

func TestRequireOrgRole_NotMember(t *testing.T) {
	getter := &mockOrgMemberGetter{members: map[string]*orgdomain.OrgMember{}}

	_, err := RequireOrgRole(context.Background(), getter, "org-1", "user-9", orgdomain.RoleMember)
	if !errors.Is(err, orgservice.ErrNotOrgMember) {
		t.Fatalf("err = %v, want ErrNotOrgMember", err)
	}
}

func TestRequireOrgRole_DisabledMember(t *testing.T) {
	getter := &mockOrgMemberGetter{members: map[string]*orgdomain.OrgMember{
		"org-1:user-1": {OrgID: "org-1", UserID: "user-1", Role: orgdomain.RoleOwner, Status: orgdomain.MemberStatusDisabled},
	}}

	_, err := RequireOrgRole(context.Background(), getter, "org-1", "user-1", orgdomain.RoleOwner)
	if !errors.Is(err, orgservice.ErrMemberDisabled) {
		t.Fatalf("err = %v, want ErrMemberDisabled", err)
	}
}

func TestRequireWorkspaceRole_Ranking(t *testing.T) {
	getter := &mockMembershipGetter{memberships: map[string]*wsdomain.Membership{
		"user-1:ws-1": {UserID: "user-1", WorkspaceID: "ws-1", Role: wsdomain.RoleSupervisor},
	}}

	if _, err := RequireWorkspaceRole(context.Background(), getter, "user-1", "ws-1", wsdomain.RoleMember); err != nil {
		t.Fatalf("supervisor should satisfy member floor: %v", err)
	}
	_, err := RequireWorkspaceRole(context.Background(), getter, "user-1", "ws-1", wsdomain.RoleAdmin)
	if !errors.Is(err, ErrWorkspaceRoleInsufficient) {
		t.Fatalf("err = %v, want ErrWorkspaceRoleInsufficient", err)
	}
}

func TestRequireWorkspaceRole_NotMember(t *testing.T) {
	getter := &mockMembershipGetter{memberships: map[string]*wsdomain.Membership{}}

	_, err := RequireWorkspaceRole(context.Background(), getter, "user-1", "ws-1", wsdomain.RoleMember)
	if !errors.Is(err, ErrNotWorkspaceMember) {
		t.Fatalf("err = %v, want ErrNotWorkspaceMember", err)
	}
}
