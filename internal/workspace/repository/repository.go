package repository

import (
	"context"

	"dayplanner-backend/internal/workspace/domain"
)

// Repository defines persistence for workspaces.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
	// GetDefaultByOrg returns the organization's default workspace, or nil if none.
	GetDefaultByOrg(ctx context.Context, orgID string) (*domain.Workspace, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Workspace, error)
	CountPersonalByUser(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, w *domain.Workspace) error
}

// MembershipRepository defines persistence for workspace memberships.
type MembershipRepository interface {
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID string) (*domain.Membership, error)
	// ListByUser returns the user's memberships ordered by creation time, earliest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
	// Ensure creates the membership unless one already exists for
	// (user, workspace); an existing row is left untouched regardless of role.
	Ensure(ctx context.Context, m *domain.Membership) error
}
