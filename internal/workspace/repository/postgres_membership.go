package repository

import (
	"context"
	"database/sql"
	"errors"

	"dayplanner-backend/internal/workspace/domain"
)

type PostgresMembershipRepository struct {
	db *sql.DB
}

// NewPostgresMembershipRepository returns a membership repository that uses the given db for persistence.
func NewPostgresMembershipRepository(db *sql.DB) *PostgresMembershipRepository {
	return &PostgresMembershipRepository{db: db}
}

const membershipColumns = "id, user_id, workspace_id, role, created_at"

// GetByUserAndWorkspace returns the membership for (user, workspace), or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresMembershipRepository) GetByUserAndWorkspace(ctx context.Context, userID, workspaceID string) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = $1 AND workspace_id = $2",
		userID, workspaceID)
	return scanMembership(row)
}

// ListByUser returns the user's memberships ordered by creation time, earliest first.
func (r *PostgresMembershipRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = $1 ORDER BY created_at",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.WorkspaceID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Create persists the membership to the database. The membership must have ID set.
func (r *PostgresMembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, workspace_id, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.WorkspaceID, m.Role, m.CreatedAt)
	return err
}

// Ensure inserts the membership if no row exists for (user, workspace).
// An existing row is left untouched, so repeated calls are safe.
func (r *PostgresMembershipRepository) Ensure(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, workspace_id, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, workspace_id) DO NOTHING`,
		m.ID, m.UserID, m.WorkspaceID, m.Role, m.CreatedAt)
	return err
}

func scanMembership(row *sql.Row) (*domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(&m.ID, &m.UserID, &m.WorkspaceID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
