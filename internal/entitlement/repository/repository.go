package repository

import (
	"context"

	"dayplanner-backend/internal/entitlement/domain"
)

// Repository defines persistence for the subscription plan catalog.
type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Plan, error)
	List(ctx context.Context) ([]*domain.Plan, error)
	// Upsert inserts or fully replaces the plan with the same key.
	Upsert(ctx context.Context, p *domain.Plan) error
}
