// Package handler exposes the plan catalog and entitlement endpoints.
// Catalog mutation and plan assignment are restricted to global admins.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dayplanner-backend/internal/audit"
	"dayplanner-backend/internal/entitlement/domain"
	entservice "dayplanner-backend/internal/entitlement/service"
	"dayplanner-backend/internal/server/middleware"
	"dayplanner-backend/internal/server/respond"
	"dayplanner-backend/internal/telemetry"
	userdomain "dayplanner-backend/internal/user/domain"
)

// UserStore is the user access the plan endpoints need: resolving the caller
// for the admin check and reassigning a user's plan.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	UpdatePlan(ctx context.Context, id, planKey string) error
}

type Handler struct {
	ents    *entservice.Service
	users   UserStore
	audit   *audit.Logger
	emitter telemetry.EventEmitter
	logger  *zap.Logger
}

func NewHandler(ents *entservice.Service, users UserStore, auditLog *audit.Logger, emitter telemetry.EventEmitter, logger *zap.Logger) *Handler {
	return &Handler{ents: ents, users: users, audit: auditLog, emitter: emitter, logger: logger}
}

type planPayload struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	PriceCents int             `json:"price_cents"`
	Features   map[string]bool `json:"features"`
	Limits     map[string]int  `json:"limits"`
}

// MyEntitlements handles GET /api/v1/entitlements. Never fails: an unknown or
// missing plan degrades to the free default.
func (h *Handler) MyEntitlements(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	ent := h.ents.Compute(r.Context(), id.UserID)
	respond.JSON(w, http.StatusOK, struct {
		PlanKey  string          `json:"plan_key"`
		PlanName string          `json:"plan_name"`
		Features map[string]bool `json:"features"`
		Limits   map[string]int  `json:"limits"`
		IsAdmin  bool            `json:"is_admin"`
	}{ent.PlanKey, ent.PlanName, ent.Features, ent.Limits, ent.IsAdmin})
}

// ListPlans handles GET /api/v1/plans.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.ents.ListPlans(r.Context())
	if err != nil {
		h.logger.Error("list plans", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]planPayload, 0, len(plans))
	for _, p := range plans {
		out = append(out, planPayload{Key: p.Key, Name: p.Name, PriceCents: p.PriceCents, Features: p.Features, Limits: p.Limits})
	}
	respond.JSON(w, http.StatusOK, out)
}

// UpsertPlan handles PUT /api/v1/plans/{key}. Global admin only.
func (h *Handler) UpsertPlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req planPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p := &domain.Plan{
		Key:        chi.URLParam(r, "key"),
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Features:   req.Features,
		Limits:     req.Limits,
	}
	if err := p.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ents.UpsertPlan(r.Context(), p); err != nil {
		h.logger.Error("upsert plan", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.audit.LogEvent(r.Context(), "", actor.ID, "plan.upsert", "plan:"+p.Key, "")
	respond.JSON(w, http.StatusOK, planPayload{Key: p.Key, Name: p.Name, PriceCents: p.PriceCents, Features: p.Features, Limits: p.Limits})
}

// AssignPlan handles PUT /api/v1/users/{id}/plan. Global admin only.
func (h *Handler) AssignPlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	targetID := chi.URLParam(r, "id")
	var req struct {
		PlanKey string `json:"plan_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := h.users.GetByID(r.Context(), targetID)
	if err != nil {
		h.logger.Error("load plan assignment target", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if target == nil {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err := h.users.UpdatePlan(r.Context(), targetID, req.PlanKey); err != nil {
		h.logger.Error("assign plan", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.audit.LogEvent(r.Context(), "", actor.ID, "plan.assign", "user:"+targetID, req.PlanKey)
	telemetry.EmitAsync(h.emitter, r.Context(), &telemetry.Event{
		UserID:    targetID,
		EventType: telemetry.EventPlanAssigned,
		Source:    "entitlement",
		Metadata:  req.PlanKey,
	}, h.logger)
	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin resolves the caller and writes the failure response itself
// when the caller is absent or not a global admin.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (*userdomain.User, bool) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	u, err := h.users.GetByID(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("load caller for admin check", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if u == nil || !u.IsAdmin {
		respond.Error(w, http.StatusForbidden, "administrator access required")
		return nil, false
	}
	return u, true
}
