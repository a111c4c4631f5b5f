package service

import (
	"context"

	"dayplanner-backend/internal/workspace/domain"
)

// Active pairs the resolved workspace with the caller's membership in it.
type Active struct {
	Workspace  *domain.Workspace
	Membership *domain.Membership
}

// WorkspaceGetter is the minimal workspace repository needed by the resolver.
type WorkspaceGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
}

// MembershipReader is the minimal membership repository needed by the resolver.
type MembershipReader interface {
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID string) (*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
}

// Resolver determines the user's active workspace for a request. Operations
// never trust a client-supplied workspace id directly; they resolve the
// membership server-side through this type.
type Resolver struct {
	workspaces  WorkspaceGetter
	memberships MembershipReader
}

// NewResolver returns a Resolver with the given dependencies.
func NewResolver(workspaces WorkspaceGetter, memberships MembershipReader) *Resolver {
	return &Resolver{workspaces: workspaces, memberships: memberships}
}

// ResolveActive returns the user's active workspace and membership. When hint
// names a workspace the user holds a membership in, that pair wins; otherwise
// the earliest-created membership is used. Returns (nil, nil) when the user
// has no memberships at all, which should not occur after registration.
func (r *Resolver) ResolveActive(ctx context.Context, userID, hint string) (*Active, error) {
	if hint != "" {
		m, err := r.memberships.GetByUserAndWorkspace(ctx, userID, hint)
		if err != nil {
			return nil, err
		}
		if m != nil {
			w, err := r.workspaces.GetByID(ctx, m.WorkspaceID)
			if err != nil {
				return nil, err
			}
			if w != nil {
				return &Active{Workspace: w, Membership: m}, nil
			}
		}
	}

	ms, err := r.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, nil
	}
	m := ms[0]
	w, err := r.workspaces.GetByID(ctx, m.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}
	return &Active{Workspace: w, Membership: m}, nil
}
