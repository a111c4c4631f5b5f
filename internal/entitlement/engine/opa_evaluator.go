package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"dayplanner-backend/internal/entitlement/domain"
)

// Default Rego policy encoding the entitlement gate rules: global admin
// overrides everything, a missing feature key means disallowed, a missing
// limit key means 0, and a mutation is allowed only while usage is strictly
// below the limit.
const defaultRegoPolicy = `package dayplanner.entitlements

default feature_allowed = false

feature_allowed if {
	input.entitlements.is_admin
}

feature_allowed if {
	input.entitlements.features[input.feature] == true
}

default limit_value = 0

limit_value = 1073741824 if {
	input.entitlements.is_admin
}

limit_value = input.entitlements.limits[input.limit] if {
	not input.entitlements.is_admin
}

default within_limit = false

within_limit if {
	input.entitlements.is_admin
}

within_limit if {
	input.usage < limit_value
}
`

// OPAEvaluator evaluates entitlement gates using OPA Rego.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles the default entitlement policy and returns an
// OPA-based gate evaluator. Compilation failure is a programming error in the
// embedded policy and is returned to the caller.
func NewOPAEvaluator() (*OPAEvaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"entitlements.rego": defaultRegoPolicy})
	if err != nil {
		return nil, fmt.Errorf("compile entitlement policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// HealthCheck verifies that the in-process OPA Rego engine can evaluate the
// compiled policy. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	d, err := e.EvaluateFeature(ctx, &domain.Entitlements{IsAdmin: true}, domain.FeatureAPIAccess)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return fmt.Errorf("policy sanity check: admin feature gate denied")
	}
	return nil
}

// EvaluateFeature decides whether the feature may be used.
func (e *OPAEvaluator) EvaluateFeature(ctx context.Context, ent *domain.Entitlements, feature string) (GateDecision, error) {
	input := buildInput(ent)
	input["feature"] = feature

	allowed, err := e.queryBool(ctx, "data.dayplanner.entitlements.feature_allowed", input)
	if err != nil {
		return GateDecision{}, err
	}
	d := GateDecision{Allowed: allowed, Key: feature}
	if !allowed {
		d.Code = CodeFeatureNotAvailable
	}
	return d, nil
}

// EvaluateLimit decides whether a usage-increasing mutation may proceed.
func (e *OPAEvaluator) EvaluateLimit(ctx context.Context, ent *domain.Entitlements, limit string, usage int) (GateDecision, error) {
	input := buildInput(ent)
	input["limit"] = limit
	input["usage"] = usage

	within, err := e.queryBool(ctx, "data.dayplanner.entitlements.within_limit", input)
	if err != nil {
		return GateDecision{}, err
	}
	value, err := e.queryInt(ctx, "data.dayplanner.entitlements.limit_value", input)
	if err != nil {
		return GateDecision{}, err
	}
	d := GateDecision{Allowed: within, Key: limit, Limit: value, Usage: usage}
	if !within {
		d.Code = CodeLimitReached
	}
	return d, nil
}

func (e *OPAEvaluator) queryBool(ctx context.Context, query string, input map[string]interface{}) (bool, error) {
	rs, err := rego.New(
		rego.Query(query),
		rego.Compiler(e.compiler),
		rego.Input(input),
	).Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval %s: %w", query, err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("eval %s: no result", query)
	}
	v, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("eval %s: non-boolean result", query)
	}
	return v, nil
}

func (e *OPAEvaluator) queryInt(ctx context.Context, query string, input map[string]interface{}) (int, error) {
	rs, err := rego.New(
		rego.Query(query),
		rego.Compiler(e.compiler),
		rego.Input(input),
	).Eval(ctx)
	if err != nil {
		return 0, fmt.Errorf("eval %s: %w", query, err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return 0, fmt.Errorf("eval %s: no result", query)
	}
	switch v := rs[0].Expressions[0].Value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("eval %s: %w", query, err)
		}
		return int(n), nil
	case float64:
		return int(v), nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("eval %s: non-numeric result", query)
	}
}

func buildInput(ent *domain.Entitlements) map[string]interface{} {
	features := map[string]interface{}{}
	limits := map[string]interface{}{}
	isAdmin := false
	if ent != nil {
		isAdmin = ent.IsAdmin
		for k, v := range ent.Features {
			features[k] = v
		}
		for k, v := range ent.Limits {
			limits[k] = v
		}
	}
	return map[string]interface{}{
		"entitlements": map[string]interface{}{
			"is_admin": isAdmin,
			"features": features,
			"limits":   limits,
		},
	}
}
