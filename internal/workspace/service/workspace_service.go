package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	entitlementdomain "dayplanner-backend/internal/entitlement/domain"
	"dayplanner-backend/internal/workspace/domain"
)

// ErrWorkspaceNameRequired is returned when creating a workspace without a name.
var ErrWorkspaceNameRequired = errors.New("workspace name is required")

// WorkspaceRepo is the minimal workspace repository needed by the workspace service.
type WorkspaceRepo interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Workspace, error)
	CountPersonalByUser(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, w *domain.Workspace) error
}

// MembershipRepo is the minimal membership repository needed by the workspace service.
type MembershipRepo interface {
	Create(ctx context.Context, m *domain.Membership) error
}

// EntitlementGate enforces feature/limit checks before usage-increasing
// mutations. Implemented by the entitlement service.
type EntitlementGate interface {
	RequireWithinLimit(ctx context.Context, ent *entitlementdomain.Entitlements, limit string, usage int) error
}

// Service creates and lists workspaces. Creation is entitlement-gated: the
// personal-workspace count is compared against the caller's plan limit before
// any row is written.
type Service struct {
	workspaces  WorkspaceRepo
	memberships MembershipRepo
	gate        EntitlementGate
}

// NewService returns a workspace Service with the given dependencies.
func NewService(workspaces WorkspaceRepo, memberships MembershipRepo, gate EntitlementGate) *Service {
	return &Service{workspaces: workspaces, memberships: memberships, gate: gate}
}

// ListForUser returns the workspaces the user belongs to, earliest membership first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*domain.Workspace, error) {
	return s.workspaces.ListByUser(ctx, userID)
}

// CreatePersonal creates a personal workspace for the user with an admin
// membership. The plan's personal_workspaces limit is checked against current
// usage strictly before the insert; a *entitlement service.DeniedError passes
// through to the handler.
func (s *Service) CreatePersonal(ctx context.Context, userID, name string, ent *entitlementdomain.Entitlements) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrWorkspaceNameRequired
	}
	usage, err := s.workspaces.CountPersonalByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireWithinLimit(ctx, ent, entitlementdomain.LimitPersonalWorkspaces, int(usage)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	w := &domain.Workspace{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      domain.WorkspaceTypePersonal,
		CreatedAt: now,
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := s.workspaces.Create(ctx, w); err != nil {
		return nil, err
	}
	m := &domain.Membership{
		ID:          uuid.New().String(),
		UserID:      userID,
		WorkspaceID: w.ID,
		Role:        domain.RoleAdmin,
		CreatedAt:   now,
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, err
	}
	return w, nil
}
