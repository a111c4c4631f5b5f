package repository

import (
	"context"

	"dayplanner-backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Org, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Org, error)
	Create(ctx context.Context, o *domain.Org) error
}

// MemberRepository defines persistence for org members.
type MemberRepository interface {
	GetByOrgAndUser(ctx context.Context, orgID, userID string) (*domain.OrgMember, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.OrgMember, error)
	Create(ctx context.Context, m *domain.OrgMember) error
	// CountActiveByOrg counts members with status active.
	CountActiveByOrg(ctx context.Context, orgID string) (int64, error)
	SetStatus(ctx context.Context, orgID, userID string, status domain.MemberStatus) error
}

// InviteRepository defines persistence for org invites.
type InviteRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.Invite, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Invite, error)
	Create(ctx context.Context, i *domain.Invite) error
	// CountPendingByOrg counts invites not yet accepted and not yet expired.
	CountPendingByOrg(ctx context.Context, orgID string) (int64, error)
}

// AcceptParams carries the writes of one invite acceptance.
type AcceptParams struct {
	Invite *domain.Invite
	Member *domain.OrgMember
	// WorkspaceMembershipID, WorkspaceID, WorkspaceRole describe the
	// default-workspace membership to ensure; WorkspaceID empty when the org
	// has no default workspace.
	WorkspaceMembershipID string
	WorkspaceID           string
	WorkspaceRole         string
}

// InviteAcceptor applies the invite-acceptance write sequence: upsert the org
// member, upsert the default-workspace membership, stamp accepted_at. Every
// write is an idempotent upsert so a retried acceptance observes a consistent
// state; the postgres implementation additionally wraps the sequence in one
// transaction.
type InviteAcceptor interface {
	Accept(ctx context.Context, p AcceptParams) error
}
