// Package service resolves user entitlements and enforces feature/limit gates.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dayplanner-backend/internal/entitlement/domain"
	"dayplanner-backend/internal/entitlement/engine"
	userdomain "dayplanner-backend/internal/user/domain"
)

// DeniedError is a structured entitlement denial. Handlers render it as 403
// with the decision code and an upgrade_required flag, never as a generic
// forbidden.
type DeniedError struct {
	Decision engine.GateDecision
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("entitlement denied: %s (%s)", e.Decision.Key, e.Decision.Code)
}

// UserGetter is the minimal user repository needed by the entitlement service.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// PlanRepo is the minimal plan catalog repository needed by the entitlement service.
type PlanRepo interface {
	GetByKey(ctx context.Context, key string) (*domain.Plan, error)
	List(ctx context.Context) ([]*domain.Plan, error)
	Upsert(ctx context.Context, p *domain.Plan) error
}

// Service computes per-request entitlements and evaluates gates. Gate
// evaluation goes through the OPA evaluator; if evaluation fails the service
// falls back to the equivalent pure-Go rules, so entitlement checks never
// error out a request.
type Service struct {
	users     UserGetter
	plans     PlanRepo
	evaluator engine.Evaluator
	logger    *zap.Logger
}

// NewService returns a Service with the given dependencies. evaluator may be
// nil; then only the pure-Go rules are used. logger may be nil.
func NewService(users UserGetter, plans PlanRepo, evaluator engine.Evaluator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, plans: plans, evaluator: evaluator, logger: logger}
}

// Compute resolves the entitlement set for userID. A global admin
// short-circuits plan lookup entirely. Any lookup failure, including an
// unknown plan key, degrades to the built-in free default instead of
// returning an error; degradation is logged.
func (s *Service) Compute(ctx context.Context, userID string) *domain.Entitlements {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("entitlements: user lookup failed, degrading to free",
			zap.String("user_id", userID), zap.Error(err))
		return fromPlan(domain.DefaultFreePlan(), false)
	}
	if u == nil {
		return fromPlan(domain.DefaultFreePlan(), false)
	}
	if u.IsAdmin {
		return s.adminEntitlements(ctx, u.PlanKey)
	}
	plan, err := s.plans.GetByKey(ctx, u.PlanKey)
	if err != nil {
		s.logger.Warn("entitlements: plan lookup failed, degrading to free",
			zap.String("plan_key", u.PlanKey), zap.Error(err))
		plan = nil
	}
	if plan == nil {
		plan = domain.DefaultFreePlan()
	}
	return fromPlan(plan, false)
}

// adminEntitlements renders the maximal set: every feature and limit key the
// catalog knows, all allowed and unbounded. The gate helpers short-circuit on
// IsAdmin anyway, so the maps are presentational; a catalog read failure only
// costs the listing, never the override.
func (s *Service) adminEntitlements(ctx context.Context, planKey string) *domain.Entitlements {
	features := map[string]bool{}
	limits := map[string]int{}
	plans, err := s.plans.List(ctx)
	if err != nil {
		s.logger.Warn("entitlements: catalog listing for admin failed", zap.Error(err))
		plans = []*domain.Plan{domain.DefaultFreePlan()}
	}
	for _, p := range plans {
		for k := range p.Features {
			features[k] = true
		}
		for k := range p.Limits {
			limits[k] = domain.UnlimitedLimit
		}
	}
	return &domain.Entitlements{
		PlanKey:  planKey,
		PlanName: "Administrator",
		Features: features,
		Limits:   limits,
		IsAdmin:  true,
	}
}

// RequireFeature checks the feature gate for ent. Returns nil when allowed or
// a *DeniedError carrying the decision when not.
func (s *Service) RequireFeature(ctx context.Context, ent *domain.Entitlements, feature string) error {
	if s.evaluator != nil {
		d, err := s.evaluator.EvaluateFeature(ctx, ent, feature)
		if err == nil {
			if d.Allowed {
				return nil
			}
			return &DeniedError{Decision: d}
		}
		s.logger.Warn("entitlements: evaluator failed, using built-in rules", zap.Error(err))
	}
	if ent.FeatureAllowed(feature) {
		return nil
	}
	return &DeniedError{Decision: engine.GateDecision{
		Code: engine.CodeFeatureNotAvailable,
		Key:  feature,
	}}
}

// RequireWithinLimit checks a usage-increasing mutation against the entitled
// limit. Callers must compute usage before the mutation; admins always pass.
// Returns nil when allowed or a *DeniedError when usage >= limit.
func (s *Service) RequireWithinLimit(ctx context.Context, ent *domain.Entitlements, limit string, usage int) error {
	if s.evaluator != nil {
		d, err := s.evaluator.EvaluateLimit(ctx, ent, limit, usage)
		if err == nil {
			if d.Allowed {
				return nil
			}
			return &DeniedError{Decision: d}
		}
		s.logger.Warn("entitlements: evaluator failed, using built-in rules", zap.Error(err))
	}
	lv := ent.LimitValue(limit)
	if ent != nil && ent.IsAdmin {
		return nil
	}
	if usage < lv {
		return nil
	}
	return &DeniedError{Decision: engine.GateDecision{
		Code:  engine.CodeLimitReached,
		Key:   limit,
		Limit: lv,
		Usage: usage,
	}}
}

// ListPlans returns the plan catalog.
func (s *Service) ListPlans(ctx context.Context) ([]*domain.Plan, error) {
	return s.plans.List(ctx)
}

// UpsertPlan validates and stores a catalog plan. Admin-only; callers enforce
// authorization.
func (s *Service) UpsertPlan(ctx context.Context, p *domain.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.plans.Upsert(ctx, p)
}

func fromPlan(p *domain.Plan, isAdmin bool) *domain.Entitlements {
	features := make(map[string]bool, len(p.Features))
	for k, v := range p.Features {
		features[k] = v
	}
	limits := make(map[string]int, len(p.Limits))
	for k, v := range p.Limits {
		limits[k] = v
	}
	return &domain.Entitlements{
		PlanKey:  p.Key,
		PlanName: p.Name,
		Features: features,
		Limits:   limits,
		IsAdmin:  isAdmin,
	}
}
