// Package respond writes JSON responses and maps service errors onto the
// HTTP status taxonomy used by every handler.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	entitlementservice "dayplanner-backend/internal/entitlement/service"
	orgservice "dayplanner-backend/internal/organization/service"
	"dayplanner-backend/internal/platform/rbac"
	userservice "dayplanner-backend/internal/user/service"
	wsservice "dayplanner-backend/internal/workspace/service"
)

// ErrorBody is the JSON error envelope. Code and UpgradeRequired are only set
// for structured entitlement denials.
type ErrorBody struct {
	Error           string `json:"error"`
	Code            string `json:"code,omitempty"`
	Key             string `json:"key,omitempty"`
	UpgradeRequired bool   `json:"upgrade_required,omitempty"`
}

// JSON writes v as JSON with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes a plain error envelope with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// EntitlementDenied writes the structured 403 for a feature/limit denial,
// carrying the decision code and the upgrade_required flag.
func EntitlementDenied(w http.ResponseWriter, denied *entitlementservice.DeniedError) {
	JSON(w, http.StatusForbidden, ErrorBody{
		Error:           denied.Error(),
		Code:            denied.Decision.Code,
		Key:             denied.Decision.Key,
		UpgradeRequired: true,
	})
}

// ServiceError maps a service-layer error to its taxonomy status.
// Authorization and entitlement failures surface verbatim; anything
// unrecognized is a 500 with a generic body so store internals never leak.
func ServiceError(w http.ResponseWriter, err error) {
	var denied *entitlementservice.DeniedError
	if errors.As(err, &denied) {
		EntitlementDenied(w, denied)
		return
	}
	switch {
	case errors.Is(err, userservice.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, userservice.ErrEmailAlreadyRegistered),
		errors.Is(err, orgservice.ErrSlugTaken),
		errors.Is(err, orgservice.ErrInviteAlreadyAccepted):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, userservice.ErrInvalidEmail),
		errors.Is(err, userservice.ErrWeakPassword),
		errors.Is(err, wsservice.ErrWorkspaceNameRequired),
		errors.Is(err, orgservice.ErrInvalidInviteRole):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orgservice.ErrOrgNotFound),
		errors.Is(err, orgservice.ErrInviteNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orgservice.ErrInviteExpired):
		Error(w, http.StatusGone, err.Error())
	case errors.Is(err, orgservice.ErrInviteEmailMismatch),
		errors.Is(err, orgservice.ErrNotOrgMember),
		errors.Is(err, orgservice.ErrMemberDisabled),
		errors.Is(err, orgservice.ErrOrgRoleInsufficient),
		errors.Is(err, rbac.ErrNotWorkspaceMember),
		errors.Is(err, rbac.ErrWorkspaceRoleInsufficient):
		Error(w, http.StatusForbidden, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
