package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"dayplanner-backend/internal/entitlement/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a plan catalog repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByKey returns the plan for key, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByKey(ctx context.Context, key string) (*domain.Plan, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT key, name, price_cents, features, limits, updated_at FROM subscription_plans WHERE key = $1",
		key)
	p, err := scanPlan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// List returns all catalog plans ordered by monthly price.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT key, name, price_cents, features, limits, updated_at FROM subscription_plans ORDER BY price_cents")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert inserts or fully replaces the plan with the same key.
func (r *PostgresRepository) Upsert(ctx context.Context, p *domain.Plan) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}
	limits, err := json.Marshal(p.Limits)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO subscription_plans (key, name, price_cents, features, limits, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (key) DO UPDATE
		 SET name = EXCLUDED.name, price_cents = EXCLUDED.price_cents,
		     features = EXCLUDED.features, limits = EXCLUDED.limits, updated_at = now()`,
		p.Key, p.Name, p.PriceCents, features, limits)
	return err
}

func scanPlan(scan func(...any) error) (*domain.Plan, error) {
	var (
		p        domain.Plan
		features []byte
		limits   []byte
	)
	if err := scan(&p.Key, &p.Name, &p.PriceCents, &features, &limits, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(limits, &p.Limits); err != nil {
		return nil, err
	}
	return &p, nil
}
