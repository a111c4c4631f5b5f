package repository

import (
	"context"
	"database/sql"
	"errors"

	"dayplanner-backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = "id, email, name, password_hash, is_admin, plan_key, created_at, updated_at"

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetByEmail returns the user whose email matches case-insensitively, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = $1",
		domain.NormalizeEmail(email))
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, is_admin, plan_key, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.IsAdmin, u.PlanKey, u.CreatedAt, u.UpdatedAt)
	return err
}

// UpdateProfile updates email and display name for the user with the given id.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, email, name string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET email = $2, name = $3, updated_at = now() WHERE id = $1",
		id, email, name)
	return err
}

// UpdatePlan sets the user's assigned subscription plan key.
func (r *PostgresRepository) UpdatePlan(ctx context.Context, id, planKey string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET plan_key = $2, updated_at = now() WHERE id = $1",
		id, planKey)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.PlanKey, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
