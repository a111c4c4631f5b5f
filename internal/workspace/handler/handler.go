// Package handler exposes workspace listing, creation, and active-workspace
// selection endpoints.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	entitlementdomain "dayplanner-backend/internal/entitlement/domain"
	"dayplanner-backend/internal/platform/rbac"
	"dayplanner-backend/internal/server/middleware"
	"dayplanner-backend/internal/server/respond"
	"dayplanner-backend/internal/workspace/domain"
	wsservice "dayplanner-backend/internal/workspace/service"
)

// HintCookieName carries the user's preferred active workspace between
// requests. A stale or foreign value falls back to the default resolution,
// never to an error.
const HintCookieName = "dp_workspace"

const hintCookieMaxAge = 30 * 24 * time.Hour

// EntitlementSource computes the caller's entitlements for gating.
type EntitlementSource interface {
	Compute(ctx context.Context, userID string) *entitlementdomain.Entitlements
}

type Handler struct {
	workspaces  *wsservice.Service
	resolver    *wsservice.Resolver
	memberships rbac.WorkspaceMembershipGetter
	ents        EntitlementSource
	secure      bool
	logger      *zap.Logger
}

func NewHandler(workspaces *wsservice.Service, resolver *wsservice.Resolver, memberships rbac.WorkspaceMembershipGetter, ents EntitlementSource, secure bool, logger *zap.Logger) *Handler {
	return &Handler{workspaces: workspaces, resolver: resolver, memberships: memberships, ents: ents, secure: secure, logger: logger}
}

type workspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	OrgID     string `json:"org_id,omitempty"`
	IsDefault bool   `json:"is_default"`
}

func toWorkspaceResponse(w *domain.Workspace) workspaceResponse {
	return workspaceResponse{
		ID:        w.ID,
		Name:      w.Name,
		Type:      string(w.Type),
		OrgID:     w.OrgID,
		IsDefault: w.IsDefault,
	}
}

// List handles GET /api/v1/workspaces.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	ws, err := h.workspaces.ListForUser(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("list workspaces", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]workspaceResponse, 0, len(ws))
	for _, x := range ws {
		out = append(out, toWorkspaceResponse(x))
	}
	respond.JSON(w, http.StatusOK, out)
}

// CreatePersonal handles POST /api/v1/workspaces. The plan limit is checked
// before any row is written.
func (h *Handler) CreatePersonal(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ent := h.ents.Compute(r.Context(), id.UserID)
	created, err := h.workspaces.CreatePersonal(r.Context(), id.UserID, req.Name, ent)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toWorkspaceResponse(created))
}

// Active handles GET /api/v1/workspaces/active.
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	active, err := h.resolver.ResolveActive(r.Context(), id.UserID, h.hintFromRequest(r))
	if err != nil {
		h.logger.Error("resolve active workspace", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if active == nil {
		respond.Error(w, http.StatusNotFound, "no workspace")
		return
	}
	respond.JSON(w, http.StatusOK, struct {
		Workspace workspaceResponse `json:"workspace"`
		Role      string            `json:"role"`
	}{toWorkspaceResponse(active.Workspace), string(active.Membership.Role)})
}

// Select handles POST /api/v1/workspaces/{id}/select. Membership is verified
// before the hint cookie is written; a non-member gets 403 and no cookie.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	workspaceID := chi.URLParam(r, "id")
	if workspaceID == "" {
		respond.Error(w, http.StatusBadRequest, "workspace id required")
		return
	}
	if _, err := rbac.RequireWorkspaceRole(r.Context(), h.memberships, id.UserID, workspaceID, domain.RoleMember); err != nil {
		respond.ServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     HintCookieName,
		Value:    workspaceID,
		Path:     "/",
		MaxAge:   int(hintCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) hintFromRequest(r *http.Request) string {
	c, err := r.Cookie(HintCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
