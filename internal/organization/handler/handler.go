// Package handler exposes organization endpoints: org creation, member
// listing and status changes, the invite lifecycle, and org workspaces.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dayplanner-backend/internal/audit"
	entitlementdomain "dayplanner-backend/internal/entitlement/domain"
	"dayplanner-backend/internal/organization/domain"
	orgservice "dayplanner-backend/internal/organization/service"
	"dayplanner-backend/internal/server/middleware"
	"dayplanner-backend/internal/server/respond"
	"dayplanner-backend/internal/telemetry"
)

// EntitlementSource computes the caller's entitlements for gating.
type EntitlementSource interface {
	Compute(ctx context.Context, userID string) *entitlementdomain.Entitlements
}

type Handler struct {
	orgs    *orgservice.Service
	ents    EntitlementSource
	audit   *audit.Logger
	emitter telemetry.EventEmitter
	logger  *zap.Logger
}

func NewHandler(orgs *orgservice.Service, ents EntitlementSource, auditLog *audit.Logger, emitter telemetry.EventEmitter, logger *zap.Logger) *Handler {
	return &Handler{orgs: orgs, ents: ents, audit: auditLog, emitter: emitter, logger: logger}
}

type orgResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type memberResponse struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type inviteResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

func toInviteResponse(i *domain.Invite, withToken bool) inviteResponse {
	out := inviteResponse{
		ID:         i.ID,
		Email:      i.Email,
		Role:       string(i.Role),
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
	}
	if withToken {
		out.Token = i.Token
	}
	return out
}

// Create handles POST /api/v1/orgs. Gated on the org_workspaces feature.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ent := h.ents.Compute(r.Context(), id.UserID)
	org, err := h.orgs.CreateOrg(r.Context(), id.UserID, req.Name, req.Slug, ent)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}

	h.audit.LogEvent(r.Context(), org.ID, id.UserID, "org.create", "org:"+org.ID, "")
	respond.JSON(w, http.StatusCreated, orgResponse{ID: org.ID, Name: org.Name, Slug: org.Slug, CreatedAt: org.CreatedAt})
}

// ListMembers handles GET /api/v1/orgs/{id}/members. Any active member may read.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orgID := chi.URLParam(r, "id")
	members, err := h.orgs.ListMembers(r.Context(), id.UserID, orgID)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{UserID: m.UserID, Role: string(m.Role), Status: string(m.Status), CreatedAt: m.CreatedAt})
	}
	respond.JSON(w, http.StatusOK, out)
}

// SetMemberStatus handles PATCH /api/v1/orgs/{id}/members/{userID}.
func (h *Handler) SetMemberStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orgID := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "userID")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := domain.MemberStatus(req.Status)
	if status != domain.MemberStatusActive && status != domain.MemberStatusDisabled {
		respond.Error(w, http.StatusBadRequest, "status must be active or disabled")
		return
	}

	if err := h.orgs.SetMemberStatus(r.Context(), id.UserID, orgID, targetID, status); err != nil {
		respond.ServiceError(w, err)
		return
	}
	h.audit.LogEvent(r.Context(), orgID, id.UserID, "org.member.set_status", "user:"+targetID, string(status))
	w.WriteHeader(http.StatusNoContent)
}

// CreateInvite handles POST /api/v1/orgs/{id}/invites. The response carries
// the token; the invitee receives it out of band.
func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orgID := chi.URLParam(r, "id")
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ent := h.ents.Compute(r.Context(), id.UserID)
	inv, err := h.orgs.CreateInvite(r.Context(), id.UserID, orgID, req.Email, domain.Role(req.Role), ent)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}

	h.audit.LogEvent(r.Context(), orgID, id.UserID, "org.invite.create", "invite:"+inv.ID, inv.Email)
	h.emit(r.Context(), telemetry.EventInviteCreated, orgID, id.UserID, inv.Email)
	respond.JSON(w, http.StatusCreated, toInviteResponse(inv, true))
}

// ListInvites handles GET /api/v1/orgs/{id}/invites. Manager only; tokens are
// not echoed back.
func (h *Handler) ListInvites(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orgID := chi.URLParam(r, "id")
	invites, err := h.orgs.ListInvites(r.Context(), id.UserID, orgID)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}
	out := make([]inviteResponse, 0, len(invites))
	for _, i := range invites {
		out = append(out, toInviteResponse(i, false))
	}
	respond.JSON(w, http.StatusOK, out)
}

// AcceptInvite handles POST /api/v1/invites/{token}/accept. The caller must
// be logged in as the invited email.
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	token := chi.URLParam(r, "token")
	inv, err := h.orgs.AcceptInvite(r.Context(), token, id.UserID, id.Email)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}

	h.audit.LogEvent(r.Context(), inv.OrgID, id.UserID, "org.invite.accept", "invite:"+inv.ID, "")
	h.emit(r.Context(), telemetry.EventInviteAccepted, inv.OrgID, id.UserID, "")
	respond.JSON(w, http.StatusOK, struct {
		OrgID string `json:"org_id"`
		Role  string `json:"role"`
	}{inv.OrgID, string(inv.Role)})
}

// CreateWorkspace handles POST /api/v1/orgs/{id}/workspaces. Owner or admin only.
func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orgID := chi.URLParam(r, "id")
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ws, err := h.orgs.CreateOrgWorkspace(r.Context(), id.UserID, orgID, req.Name)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}
	h.audit.LogEvent(r.Context(), orgID, id.UserID, "org.workspace.create", "workspace:"+ws.ID, "")
	respond.JSON(w, http.StatusCreated, struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		OrgID string `json:"org_id"`
	}{ws.ID, ws.Name, ws.OrgID})
}

func (h *Handler) emit(ctx context.Context, eventType, orgID, userID, metadata string) {
	telemetry.EmitAsync(h.emitter, ctx, &telemetry.Event{
		OrgID:     orgID,
		UserID:    userID,
		EventType: eventType,
		Source:    "organization",
		Metadata:  metadata,
	}, h.logger)
}
