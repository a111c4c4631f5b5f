// Package handler exposes the authentication endpoints: register, login,
// logout, and the current-user profile.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"dayplanner-backend/internal/audit"
	"dayplanner-backend/internal/security"
	"dayplanner-backend/internal/server/middleware"
	"dayplanner-backend/internal/server/respond"
	"dayplanner-backend/internal/session"
	"dayplanner-backend/internal/telemetry"
	userdomain "dayplanner-backend/internal/user/domain"
	userservice "dayplanner-backend/internal/user/service"
)

// UserGetter loads the authoritative user row behind a session identity.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

type Handler struct {
	auth     *userservice.AuthService
	users    UserGetter
	sessions *session.Manager
	audit    *audit.Logger
	emitter  telemetry.EventEmitter
	logger   *zap.Logger
}

func NewHandler(auth *userservice.AuthService, users UserGetter, sessions *session.Manager, auditLog *audit.Logger, emitter telemetry.EventEmitter, logger *zap.Logger) *Handler {
	return &Handler{auth: auth, users: users, sessions: sessions, audit: auditLog, emitter: emitter, logger: logger}
}

type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	PlanKey string `json:"plan_key"`
	IsAdmin bool   `json:"is_admin"`
}

func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, PlanKey: u.PlanKey, IsAdmin: u.IsAdmin}
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}

	if err := h.sessions.Issue(w, sessionIdentity(u)); err != nil {
		h.logger.Error("issue session after register", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.audit.LogEvent(r.Context(), "", u.ID, "user.register", "user:"+u.ID, "")
	h.emit(r.Context(), telemetry.EventRegister, "", u.ID, "")
	respond.JSON(w, http.StatusCreated, toUserResponse(u))
}

// Login handles POST /api/v1/auth/login. Wrapped by the login rate limiter in
// the router.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.audit.LogEvent(r.Context(), "", "", "user.login_failure", "user", "")
		h.emit(r.Context(), telemetry.EventLoginFailure, "", "", "")
		respond.ServiceError(w, err)
		return
	}

	if err := h.sessions.Issue(w, sessionIdentity(u)); err != nil {
		h.logger.Error("issue session after login", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.audit.LogEvent(r.Context(), "", u.ID, "user.login", "user:"+u.ID, "")
	h.emit(r.Context(), telemetry.EventLogin, "", u.ID, "")
	respond.JSON(w, http.StatusOK, toUserResponse(u))
}

// Logout handles POST /api/v1/auth/logout. Always clears the cookie, even
// when the request carries no valid session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := h.sessions.FromRequest(r); id != nil {
		h.audit.LogEvent(r.Context(), "", id.UserID, "user.logout", "user:"+id.UserID, "")
		h.emit(r.Context(), telemetry.EventLogout, "", id.UserID, "")
	}
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me. The session identity is only a hint; the
// response reflects the current user row.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	u, err := h.users.GetByID(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("load current user", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil {
		h.sessions.Clear(w)
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respond.JSON(w, http.StatusOK, toUserResponse(u))
}

// UpdateMe handles PUT /api/v1/me. Re-issues the session cookie so the
// embedded email and name stay current.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.auth.UpdateProfile(r.Context(), id.UserID, req.Email, req.Name)
	if err != nil {
		respond.ServiceError(w, err)
		return
	}
	if err := h.sessions.Issue(w, sessionIdentity(u)); err != nil {
		h.logger.Error("reissue session after profile update", zap.Error(err))
	}

	h.audit.LogEvent(r.Context(), "", u.ID, "user.update_profile", "user:"+u.ID, "")
	respond.JSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) emit(ctx context.Context, eventType, orgID, userID, metadata string) {
	telemetry.EmitAsync(h.emitter, ctx, &telemetry.Event{
		OrgID:     orgID,
		UserID:    userID,
		EventType: eventType,
		Source:    "auth",
		Metadata:  metadata,
	}, h.logger)
}

func sessionIdentity(u *userdomain.User) security.SessionIdentity {
	return security.SessionIdentity{UserID: u.ID, Email: u.Email, Name: u.Name}
}
