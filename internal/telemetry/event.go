// Package telemetry defines the audit/auth event shape emitted by the server
// and consumed by the event worker.
package telemetry

import (
	"context"
	"time"
)

// Event is one access-control event (login, invite accepted, entitlement
// denial, ...). Serialized as JSON on the wire.
type Event struct {
	OrgID     string    `json:"orgId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	EventType string    `json:"eventType"`
	Source    string    `json:"source"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event types used across the access-control core.
const (
	EventLogin             = "login"
	EventLoginFailure      = "login_failure"
	EventLogout            = "logout"
	EventRegister          = "register"
	EventInviteCreated     = "invite_created"
	EventInviteAccepted    = "invite_accepted"
	EventPlanAssigned      = "plan_assigned"
	EventEntitlementDenied = "entitlement_denied"
)

// EventEmitter emits events (e.g. to Kafka). Best-effort; callers log and
// ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
