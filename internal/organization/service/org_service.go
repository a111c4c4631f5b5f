package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	entitlementdomain "dayplanner-backend/internal/entitlement/domain"
	"dayplanner-backend/internal/organization/domain"
	"dayplanner-backend/internal/organization/repository"
	workspacedomain "dayplanner-backend/internal/workspace/domain"
)

// Sentinel errors for the org service; handlers map them to HTTP statuses.
// The invite outcomes are deliberately distinct: not-found, already-accepted,
// expired, and email-mismatch must each be visible to the caller as such.
var (
	ErrOrgNotFound           = errors.New("organization not found")
	ErrSlugTaken             = errors.New("organization slug already in use")
	ErrNotOrgMember          = errors.New("user is not a member of the organization")
	ErrMemberDisabled        = errors.New("organization membership is disabled")
	ErrOrgRoleInsufficient   = errors.New("organization owner or admin required")
	ErrInviteNotFound        = errors.New("invite not found")
	ErrInviteAlreadyAccepted = errors.New("invite already accepted")
	ErrInviteExpired         = errors.New("invite expired")
	ErrInviteEmailMismatch   = errors.New("invite was issued to a different email")
	ErrInvalidInviteRole     = errors.New("invalid invite role")
)

// WorkspaceRepo is the minimal workspace repository needed by the org service.
type WorkspaceRepo interface {
	GetDefaultByOrg(ctx context.Context, orgID string) (*workspacedomain.Workspace, error)
	Create(ctx context.Context, w *workspacedomain.Workspace) error
}

// MembershipRepo is the minimal workspace membership repository needed by the org service.
type MembershipRepo interface {
	Create(ctx context.Context, m *workspacedomain.Membership) error
	Ensure(ctx context.Context, m *workspacedomain.Membership) error
}

// EntitlementGate enforces limit checks before usage-increasing mutations.
type EntitlementGate interface {
	RequireWithinLimit(ctx context.Context, ent *entitlementdomain.Entitlements, limit string, usage int) error
	RequireFeature(ctx context.Context, ent *entitlementdomain.Entitlements, feature string) error
}

// Service implements organization management and the invite lifecycle.
type Service struct {
	orgs        repository.Repository
	members     repository.MemberRepository
	invites     repository.InviteRepository
	acceptor    repository.InviteAcceptor
	workspaces  WorkspaceRepo
	memberships MembershipRepo
	gate        EntitlementGate
}

// NewService returns an org Service with the given dependencies.
func NewService(
	orgs repository.Repository,
	members repository.MemberRepository,
	invites repository.InviteRepository,
	acceptor repository.InviteAcceptor,
	workspaces WorkspaceRepo,
	memberships MembershipRepo,
	gate EntitlementGate,
) *Service {
	return &Service{
		orgs:        orgs,
		members:     members,
		invites:     invites,
		acceptor:    acceptor,
		workspaces:  workspaces,
		memberships: memberships,
		gate:        gate,
	}
}

// CreateOrg creates an organization with its default workspace. The creator
// becomes the owner org member and an admin of the default workspace.
// Requires the org_workspaces feature unless the creator is a global admin.
func (s *Service) CreateOrg(ctx context.Context, creatorID, name, slug string, ent *entitlementdomain.Entitlements) (*domain.Org, error) {
	if err := s.gate.RequireFeature(ctx, ent, entitlementdomain.FeatureOrgWorkspaces); err != nil {
		return nil, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	org := &domain.Org{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Slug:      slug,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := org.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.orgs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}

	now := org.CreatedAt
	if err := s.members.Create(ctx, &domain.OrgMember{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		UserID:    creatorID,
		Role:      domain.RoleOwner,
		Status:    domain.MemberStatusActive,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	ws := &workspacedomain.Workspace{
		ID:        uuid.New().String(),
		Name:      org.Name,
		Type:      workspacedomain.WorkspaceTypeOrganization,
		OrgID:     org.ID,
		IsDefault: true,
		CreatedAt: now,
	}
	if err := s.workspaces.Create(ctx, ws); err != nil {
		return nil, err
	}
	if err := s.memberships.Create(ctx, &workspacedomain.Membership{
		ID:          uuid.New().String(),
		UserID:      creatorID,
		WorkspaceID: ws.ID,
		Role:        workspacedomain.RoleAdmin,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	return org, nil
}

// requireActiveMember returns the actor's org member row, or ErrNotOrgMember /
// ErrMemberDisabled. Read operations require active status regardless of role.
func (s *Service) requireActiveMember(ctx context.Context, orgID, userID string) (*domain.OrgMember, error) {
	m, err := s.members.GetByOrgAndUser(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotOrgMember
	}
	if m.Status != domain.MemberStatusActive {
		return nil, ErrMemberDisabled
	}
	return m, nil
}

// requireManager returns the actor's member row when its role may mutate org
// membership, ErrOrgRoleInsufficient otherwise.
func (s *Service) requireManager(ctx context.Context, orgID, userID string) (*domain.OrgMember, error) {
	m, err := s.requireActiveMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if !m.Role.CanManage() {
		return nil, ErrOrgRoleInsufficient
	}
	return m, nil
}

// CreateInvite creates a pending invite. Only org owners/admins may invite.
// Usage for the org_members limit is active members plus pending invites,
// counted strictly before the insert; global admins bypass the limit through
// the gate.
func (s *Service) CreateInvite(ctx context.Context, actorID, orgID, email string, role domain.Role, ent *entitlementdomain.Entitlements) (*domain.Invite, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrgNotFound
	}
	if _, err := s.requireManager(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	switch role {
	case domain.RoleOwner, domain.RoleAdmin, domain.RoleSupervisor, domain.RoleMember:
	default:
		return nil, ErrInvalidInviteRole
	}

	memberCount, err := s.members.CountActiveByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	pendingCount, err := s.invites.CountPendingByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	usage := int(memberCount + pendingCount)
	if err := s.gate.RequireWithinLimit(ctx, ent, entitlementdomain.LimitOrgMembers, usage); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invite := &domain.Invite{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Email:     strings.TrimSpace(email),
		Role:      role,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(domain.InviteTTL),
		CreatedAt: now,
	}
	if invite.Email == "" {
		return nil, errors.New("invitee email is required")
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// AcceptInvite consumes the invite token for the authenticated user. Guards,
// in order: unknown token, already accepted, expired, session email mismatch.
// On success the user becomes an active org member at the invite's role and,
// when the org has a default workspace, gains a workspace membership there
// (admin for owner/admin invites, member otherwise). The writes are
// idempotent, so a retried accept after a partial failure converges.
func (s *Service) AcceptInvite(ctx context.Context, token, userID, sessionEmail string) (*domain.Invite, error) {
	invite, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}
	if invite.Accepted() {
		return nil, ErrInviteAlreadyAccepted
	}
	if invite.Expired(time.Now().UTC()) {
		return nil, ErrInviteExpired
	}
	if !invite.EmailMatches(sessionEmail) {
		return nil, ErrInviteEmailMismatch
	}

	params := repository.AcceptParams{
		Invite: invite,
		Member: &domain.OrgMember{
			ID:        uuid.New().String(),
			OrgID:     invite.OrgID,
			UserID:    userID,
			Role:      invite.Role,
			Status:    domain.MemberStatusActive,
			CreatedAt: time.Now().UTC(),
		},
	}
	ws, err := s.workspaces.GetDefaultByOrg(ctx, invite.OrgID)
	if err != nil {
		return nil, err
	}
	if ws != nil {
		params.WorkspaceMembershipID = uuid.New().String()
		params.WorkspaceID = ws.ID
		params.WorkspaceRole = string(workspaceRoleFor(invite.Role))
	}
	if err := s.acceptor.Accept(ctx, params); err != nil {
		return nil, err
	}
	return invite, nil
}

// ListMembers returns the org roster. Requires the caller to be an active
// member; any role may read.
func (s *Service) ListMembers(ctx context.Context, actorID, orgID string) ([]*domain.OrgMember, error) {
	if _, err := s.requireActiveMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	return s.members.ListByOrg(ctx, orgID)
}

// ListInvites returns the org's invites. Requires owner/admin.
func (s *Service) ListInvites(ctx context.Context, actorID, orgID string) ([]*domain.Invite, error) {
	if _, err := s.requireManager(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	return s.invites.ListByOrg(ctx, orgID)
}

// SetMemberStatus enables or disables an org member. Requires owner/admin.
func (s *Service) SetMemberStatus(ctx context.Context, actorID, orgID, userID string, status domain.MemberStatus) error {
	if _, err := s.requireManager(ctx, orgID, actorID); err != nil {
		return err
	}
	m, err := s.members.GetByOrgAndUser(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotOrgMember
	}
	return s.members.SetStatus(ctx, orgID, userID, status)
}

// CreateOrgWorkspace creates an additional workspace owned by the org with an
// admin membership for the actor. Requires owner/admin.
func (s *Service) CreateOrgWorkspace(ctx context.Context, actorID, orgID, name string) (*workspacedomain.Workspace, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrgNotFound
	}
	if _, err := s.requireManager(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("workspace name is required")
	}
	now := time.Now().UTC()
	ws := &workspacedomain.Workspace{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      workspacedomain.WorkspaceTypeOrganization,
		OrgID:     orgID,
		CreatedAt: now,
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	if err := s.workspaces.Create(ctx, ws); err != nil {
		return nil, err
	}
	if err := s.memberships.Create(ctx, &workspacedomain.Membership{
		ID:          uuid.New().String(),
		UserID:      actorID,
		WorkspaceID: ws.ID,
		Role:        workspacedomain.RoleAdmin,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	return ws, nil
}

// workspaceRoleFor maps an org role to the default-workspace membership role
// granted on invite acceptance.
func workspaceRoleFor(role domain.Role) workspacedomain.Role {
	if role.CanManage() {
		return workspacedomain.RoleAdmin
	}
	return workspacedomain.RoleMember
}
