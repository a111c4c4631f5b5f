package repository

import (
	"context"
	"database/sql"
	"errors"

	"dayplanner-backend/internal/workspace/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a workspace repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const workspaceColumns = "id, name, type, COALESCE(org_id::text, ''), is_default, created_at"

// GetByID returns the workspace for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+workspaceColumns+" FROM workspaces WHERE id = $1", id)
	return scanWorkspace(row)
}

// GetDefaultByOrg returns the org's default workspace, or nil if the org has none.
func (r *PostgresRepository) GetDefaultByOrg(ctx context.Context, orgID string) (*domain.Workspace, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+workspaceColumns+" FROM workspaces WHERE org_id = $1 AND is_default",
		orgID)
	return scanWorkspace(row)
}

// ListByUser returns workspaces the user holds a membership in, ordered by
// membership creation time, earliest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Workspace, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.name, w.type, COALESCE(w.org_id::text, ''), w.is_default, w.created_at
		 FROM workspaces w
		 JOIN memberships m ON m.workspace_id = w.id
		 WHERE m.user_id = $1
		 ORDER BY m.created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Workspace
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Type, &w.OrgID, &w.IsDefault, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

// CountPersonalByUser counts personal workspaces the user holds a membership in.
// Used for plan limit enforcement.
func (r *PostgresRepository) CountPersonalByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*)
		 FROM workspaces w
		 JOIN memberships m ON m.workspace_id = w.id
		 WHERE m.user_id = $1 AND w.type = 'personal'`,
		userID).Scan(&n)
	return n, err
}

// Create persists the workspace to the database. The workspace must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, w *domain.Workspace) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, type, org_id, is_default, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6)`,
		w.ID, w.Name, w.Type, w.OrgID, w.IsDefault, w.CreatedAt)
	return err
}

func scanWorkspace(row *sql.Row) (*domain.Workspace, error) {
	var w domain.Workspace
	err := row.Scan(&w.ID, &w.Name, &w.Type, &w.OrgID, &w.IsDefault, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}
