package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dayplanner-backend/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	err     error
}

func (r *memAuditRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for _, a := range r.entries {
		if a.OrgID == orgID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, a)
	return nil
}

func TestLogEvent_PersistsEntry(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "203.0.113.9" }, nil)

	l.LogEvent(context.Background(), "org-1", "user-1", "org.invite.create", "invite:i1", "new@example.com")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.OrgID != "org-1" || e.UserID != "user-1" || e.Action != "org.invite.create" {
		t.Errorf("entry = %+v", e)
	}
	if e.IP != "203.0.113.9" {
		t.Errorf("ip = %q", e.IP)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("entry missing id or timestamp")
	}
}

func TestLogEvent_EmptyOrgUsesSentinel(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, nil, nil)

	l.LogEvent(context.Background(), "", "user-1", "user.login", "user:user-1", "")

	if repo.entries[0].OrgID != SentinelOrgID {
		t.Errorf("org_id = %q, want %q", repo.entries[0].OrgID, SentinelOrgID)
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want unknown", repo.entries[0].IP)
	}
}

func TestLogEvent_BestEffort(t *testing.T) {
	repo := &memAuditRepo{err: errors.New("db down")}
	l := NewLogger(repo, nil, nil)

	// Must not panic or propagate the failure.
	l.LogEvent(context.Background(), "org-1", "user-1", "user.login", "user:user-1", "")
}

func TestLogEvent_NilRepo(t *testing.T) {
	l := NewLogger(nil, nil, nil)
	l.LogEvent(context.Background(), "org-1", "user-1", "user.login", "user:user-1", "")
}
