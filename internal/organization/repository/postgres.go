package repository

import (
	"context"
	"database/sql"
	"errors"

	"dayplanner-backend/internal/organization/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orgColumns = "id, name, slug, creator_id, created_at"

// GetByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orgColumns+" FROM organizations WHERE id = $1", id)
	return scanOrg(row)
}

// GetBySlug returns the organization for slug, or nil if not found.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orgColumns+" FROM organizations WHERE slug = $1", slug)
	return scanOrg(row)
}

// Create persists the organization to the database. The organization must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Org) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, slug, creator_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.Name, o.Slug, o.CreatorID, o.CreatedAt)
	return err
}

func scanOrg(row *sql.Row) (*domain.Org, error) {
	var o domain.Org
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.CreatorID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
