package service

import (
	"context"
	"errors"
	"testing"
	"time"

	entitlementdomain "dayplanner-backend/internal/entitlement/domain"
	"dayplanner-backend/internal/workspace/domain"
)

var errLimitReached = errors.New("limit reached")

// fakeGate denies once usage reaches the entitlement's limit value, recording
// the usage it was asked about.
type fakeGate struct {
	lastLimit string
	lastUsage int
}

func (g *fakeGate) RequireWithinLimit(ctx context.Context, ent *entitlementdomain.Entitlements, limit string, usage int) error {
	g.lastLimit = limit
	g.lastUsage = usage
	if usage >= ent.LimitValue(limit) {
		return errLimitReached
	}
	return nil
}

func freeEntitlements() *entitlementdomain.Entitlements {
	return &entitlementdomain.Entitlements{
		PlanKey: entitlementdomain.PlanFree,
		Limits:  map[string]int{entitlementdomain.LimitPersonalWorkspaces: 1},
	}
}

func TestCreatePersonal_Success(t *testing.T) {
	ws := newMemWorkspaceStore()
	ms := newMemMembershipStore()
	gate := &fakeGate{}
	svc := NewService(ws, ms, gate)

	created, err := svc.CreatePersonal(context.Background(), "user-1", "  Morning Planning  ", freeEntitlements())
	if err != nil {
		t.Fatalf("CreatePersonal: %v", err)
	}
	if created.Name != "Morning Planning" {
		t.Errorf("name = %q, want trimmed", created.Name)
	}
	if created.Type != domain.WorkspaceTypePersonal {
		t.Errorf("type = %q, want personal", created.Type)
	}
	if gate.lastLimit != entitlementdomain.LimitPersonalWorkspaces {
		t.Errorf("gate checked %q, want personal_workspaces", gate.lastLimit)
	}

	m, err := ms.GetByUserAndWorkspace(context.Background(), "user-1", created.ID)
	if err != nil || m == nil {
		t.Fatalf("membership not created: %v", err)
	}
	if m.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want admin", m.Role)
	}
}

func TestCreatePersonal_LimitCheckedBeforeInsert(t *testing.T) {
	ws := newMemWorkspaceStore()
	ms := newMemMembershipStore()
	svc := NewService(ws, ms, &fakeGate{})
	seedWorkspace(ws, "existing", domain.WorkspaceTypePersonal)

	_, err := svc.CreatePersonal(context.Background(), "user-1", "Second", freeEntitlements())
	if !errors.Is(err, errLimitReached) {
		t.Fatalf("err = %v, want limit denial", err)
	}
	// Nothing may be written on denial.
	if len(ws.m) != 1 {
		t.Errorf("workspaces = %d, want 1 (no insert on denial)", len(ws.m))
	}
	if len(ms.m) != 0 {
		t.Errorf("memberships = %d, want 0", len(ms.m))
	}
}

func TestCreatePersonal_NameRequired(t *testing.T) {
	svc := NewService(newMemWorkspaceStore(), newMemMembershipStore(), &fakeGate{})

	_, err := svc.CreatePersonal(context.Background(), "user-1", "   ", freeEntitlements())
	if !errors.Is(err, ErrWorkspaceNameRequired) {
		t.Fatalf("err = %v, want ErrWorkspaceNameRequired", err)
	}
}

func TestCreatePersonal_UsageCountsOnlyPersonal(t *testing.T) {
	ws := newMemWorkspaceStore()
	ms := newMemMembershipStore()
	gate := &fakeGate{}
	svc := NewService(ws, ms, gate)
	ws.m["org-ws"] = &domain.Workspace{ID: "org-ws", Name: "Team", Type: domain.WorkspaceTypeOrganization, OrgID: "org-1", CreatedAt: time.Now()}

	if _, err := svc.CreatePersonal(context.Background(), "user-1", "Mine", freeEntitlements()); err != nil {
		t.Fatalf("CreatePersonal: %v", err)
	}
	if gate.lastUsage != 0 {
		t.Errorf("usage = %d, want 0 (org workspaces excluded)", gate.lastUsage)
	}
}
