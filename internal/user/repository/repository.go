package repository

import (
	"context"

	"dayplanner-backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail looks up a user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateProfile updates display name and email for the user.
	UpdateProfile(ctx context.Context, id, email, name string) error
	// UpdatePlan sets the user's assigned subscription plan key.
	UpdatePlan(ctx context.Context, id, planKey string) error
}
