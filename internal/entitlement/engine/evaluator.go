// Package engine evaluates entitlement gate decisions using OPA or other engines.
package engine

import (
	"context"

	"dayplanner-backend/internal/entitlement/domain"
)

// Decision codes carried in structured entitlement denials.
const (
	CodeFeatureNotAvailable = "FEATURE_NOT_AVAILABLE"
	CodeLimitReached        = "LIMIT_REACHED"
)

// GateDecision is the outcome of one feature or limit gate check.
type GateDecision struct {
	Allowed bool
	// Code is CodeFeatureNotAvailable or CodeLimitReached when denied.
	Code string
	// Key is the feature or limit key the decision was made for.
	Key string
	// Limit and Usage are populated for limit checks.
	Limit int
	Usage int
}

// Evaluator decides feature and limit gates for a resolved entitlement set.
// Implementations must not fail a request: on internal evaluation errors they
// return an error and callers fall back to the pure-Go rules.
type Evaluator interface {
	// EvaluateFeature decides whether the feature may be used.
	EvaluateFeature(ctx context.Context, ent *domain.Entitlements, feature string) (GateDecision, error)
	// EvaluateLimit decides whether a usage-increasing mutation may proceed,
	// comparing current usage against the entitled limit.
	EvaluateLimit(ctx context.Context, ent *domain.Entitlements, limit string, usage int) (GateDecision, error)
}
