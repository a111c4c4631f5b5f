package repository

import (
	"context"
	"database/sql"
	"errors"

	"dayplanner-backend/internal/organization/domain"
)

type PostgresMemberRepository struct {
	db *sql.DB
}

// NewPostgresMemberRepository returns an org member repository that uses the given db for persistence.
func NewPostgresMemberRepository(db *sql.DB) *PostgresMemberRepository {
	return &PostgresMemberRepository{db: db}
}

const memberColumns = "id, org_id, user_id, role, status, created_at"

// GetByOrgAndUser returns the member row for (org, user), or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresMemberRepository) GetByOrgAndUser(ctx context.Context, orgID, userID string) (*domain.OrgMember, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM org_members WHERE org_id = $1 AND user_id = $2",
		orgID, userID)
	return scanMember(row.Scan)
}

// ListByOrg returns all member rows of the org ordered by creation time.
func (r *PostgresMemberRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.OrgMember, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM org_members WHERE org_id = $1 ORDER BY created_at",
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.OrgMember
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create persists the member to the database. The member must have ID set.
func (r *PostgresMemberRepository) Create(ctx context.Context, m *domain.OrgMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO org_members (id, org_id, user_id, role, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.OrgID, m.UserID, m.Role, m.Status, m.CreatedAt)
	return err
}

// CountActiveByOrg counts members with status active.
func (r *PostgresMemberRepository) CountActiveByOrg(ctx context.Context, orgID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT count(*) FROM org_members WHERE org_id = $1 AND status = 'active'",
		orgID).Scan(&n)
	return n, err
}

// SetStatus updates the status of the (org, user) member row.
func (r *PostgresMemberRepository) SetStatus(ctx context.Context, orgID, userID string, status domain.MemberStatus) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE org_members SET status = $3 WHERE org_id = $1 AND user_id = $2",
		orgID, userID, status)
	return err
}

func scanMember(scan func(...any) error) (*domain.OrgMember, error) {
	var m domain.OrgMember
	err := scan(&m.ID, &m.OrgID, &m.UserID, &m.Role, &m.Status, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
