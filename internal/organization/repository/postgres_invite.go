package repository

import (
	"context"
	"database/sql"
	"errors"

	"dayplanner-backend/internal/organization/domain"
)

type PostgresInviteRepository struct {
	db *sql.DB
}

// NewPostgresInviteRepository returns an invite repository that uses the given db for persistence.
func NewPostgresInviteRepository(db *sql.DB) *PostgresInviteRepository {
	return &PostgresInviteRepository{db: db}
}

const inviteColumns = "id, org_id, email, role, token, expires_at, accepted_at, created_at"

// GetByToken returns the invite holding token, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresInviteRepository) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM org_invites WHERE token = $1", token)
	return scanInvite(row.Scan)
}

// ListByOrg returns all invites of the org, newest first.
func (r *PostgresInviteRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+inviteColumns+" FROM org_invites WHERE org_id = $1 ORDER BY created_at DESC",
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Invite
	for rows.Next() {
		i, err := scanInvite(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Create persists the invite to the database. The invite must have ID and token set.
func (r *PostgresInviteRepository) Create(ctx context.Context, i *domain.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO org_invites (id, org_id, email, role, token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		i.ID, i.OrgID, i.Email, i.Role, i.Token, i.ExpiresAt, i.CreatedAt)
	return err
}

// CountPendingByOrg counts invites not yet accepted and not yet expired.
func (r *PostgresInviteRepository) CountPendingByOrg(ctx context.Context, orgID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT count(*) FROM org_invites WHERE org_id = $1 AND accepted_at IS NULL AND expires_at > now()",
		orgID).Scan(&n)
	return n, err
}

// Accept applies the invite-acceptance writes in one transaction. Each
// statement is an idempotent upsert, so a retried acceptance that raced a
// committed one simply re-applies no-ops. Implements InviteAcceptor.
func (r *PostgresInviteRepository) Accept(ctx context.Context, p AcceptParams) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	m := p.Member
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO org_members (id, org_id, user_id, role, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (org_id, user_id) DO UPDATE SET role = EXCLUDED.role, status = 'active'`,
		m.ID, m.OrgID, m.UserID, m.Role, m.Status, m.CreatedAt); err != nil {
		return err
	}

	if p.WorkspaceID != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memberships (id, user_id, workspace_id, role, created_at)
			 VALUES ($1, $2, $3, $4, now())
			 ON CONFLICT (user_id, workspace_id) DO NOTHING`,
			p.WorkspaceMembershipID, m.UserID, p.WorkspaceID, p.WorkspaceRole); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE org_invites SET accepted_at = now() WHERE id = $1 AND accepted_at IS NULL",
		p.Invite.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func scanInvite(scan func(...any) error) (*domain.Invite, error) {
	var (
		i          domain.Invite
		acceptedAt sql.NullTime
	)
	err := scan(&i.ID, &i.OrgID, &i.Email, &i.Role, &i.Token, &i.ExpiresAt, &acceptedAt, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time
		i.AcceptedAt = &t
	}
	return &i, nil
}
