package domain

import "time"

// AuditLog is one persisted audit event (login, invite accepted, plan
// assigned, ...).
type AuditLog struct {
	ID        string
	OrgID     string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
