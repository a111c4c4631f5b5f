package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"dayplanner-backend/internal/workspace/domain"
)

type memWorkspaceStore struct {
	mu sync.Mutex
	m  map[string]*domain.Workspace
}

func newMemWorkspaceStore() *memWorkspaceStore {
	return &memWorkspaceStore{m: map[string]*domain.Workspace{}}
}

func (r *memWorkspaceStore) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[id], nil
}

func (r *memWorkspaceStore) GetDefaultByOrg(ctx context.Context, orgID string) (*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.m {
		if w.OrgID == orgID && w.IsDefault {
			return w, nil
		}
	}
	return nil, nil
}

func (r *memWorkspaceStore) ListByUser(ctx context.Context, userID string) ([]*domain.Workspace, error) {
	return nil, nil
}

func (r *memWorkspaceStore) CountPersonalByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, w := range r.m {
		if w.Type == domain.WorkspaceTypePersonal {
			n++
		}
	}
	return n, nil
}

func (r *memWorkspaceStore) Create(ctx context.Context, w *domain.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[w.ID] = w
	return nil
}

type memMembershipStore struct {
	mu sync.Mutex
	m  map[string]*domain.Membership
}

func newMemMembershipStore() *memMembershipStore {
	return &memMembershipStore{m: map[string]*domain.Membership{}}
}

func (r *memMembershipStore) GetByUserAndWorkspace(ctx context.Context, userID, workspaceID string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.m {
		if m.UserID == userID && m.WorkspaceID == workspaceID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMembershipStore) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Membership
	for _, m := range r.m {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMembershipStore) Create(ctx context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[m.ID] = m
	return nil
}

func (r *memMembershipStore) Ensure(ctx context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.m {
		if existing.UserID == m.UserID && existing.WorkspaceID == m.WorkspaceID {
			return nil
		}
	}
	r.m[m.ID] = m
	return nil
}

func seedWorkspace(ws *memWorkspaceStore, id string, typ domain.WorkspaceType) {
	ws.m[id] = &domain.Workspace{ID: id, Name: id, Type: typ, CreatedAt: time.Now()}
}

func seedMembership(ms *memMembershipStore, id, userID, workspaceID string, createdAt time.Time) {
	ms.m[id] = &domain.Membership{ID: id, UserID: userID, WorkspaceID: workspaceID, Role: domain.RoleMember, CreatedAt: createdAt}
}

func TestResolveActive_HintWins(t *testing.T) {
	ws := newMemWorkspaceStore()
	ms := newMemMembershipStore()
	seedWorkspace(ws, "ws-a", domain.WorkspaceTypePersonal)
	seedWorkspace(ws, "ws-b", domain.WorkspaceTypePersonal)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedMembership(ms, "m1", "user-1", "ws-a", base)
	seedMembership(ms, "m2", "user-1", "ws-b", base.Add(time.Hour))

	r := NewResolver(ws, ms)
	active, err := r.ResolveActive(context.Background(), "user-1", "ws-b")
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if active.Workspace.ID != "ws-b" {
		t.Errorf("workspace = %q, want ws-b", active.Workspace.ID)
	}
}

func TestResolveActive_StaleHintFallsBack(t *testing.T) {
	ws := newMemWorkspaceStore()
	ms := newMemMembershipStore()
	seedWorkspace(ws, "ws-a", domain.WorkspaceTypePersonal)
	seedMembership(ms, "m1", "user-1", "ws-a", time.Now())

	r := NewResolver(ws, ms)
	active, err := r.ResolveActive(context.Background(), "user-1", "ws-gone")
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if active == nil || active.Workspace.ID != "ws-a" {
		t.Fatalf("stale hint did not fall back to default: %+v", active)
	}
}

func TestResolveActive_ForeignHintIgnored(t *testing.T) {
	ws := newMemWorkspaceStore()
	ms := newMemMembershipStore()
	seedWorkspace(ws, "ws-mine", domain.WorkspaceTypePersonal)
	seedWorkspace(ws, "ws-theirs", domain.WorkspaceTypePersonal)
	seedMembership(ms, "m1", "user-1", "ws-mine", time.Now())
	seedMembership(ms, "m2", "user-2", "ws-theirs", time.Now())

	r := NewResolver(ws, ms)
	active, err := r.ResolveActive(context.Background(), "user-1", "ws-theirs")
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if active.Workspace.ID != "ws-mine" {
		t.Errorf("workspace = %q, want ws-mine", active.Workspace.ID)
	}
}

func TestResolveActive_EarliestMembershipDefault(t *testing.T) {
	ws := newMemWorkspaceStore()
	ms := newMemMembershipStore()
	seedWorkspace(ws, "ws-old", domain.WorkspaceTypePersonal)
	seedWorkspace(ws, "ws-new", domain.WorkspaceTypeOrganization)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedMembership(ms, "m2", "user-1", "ws-new", base.Add(time.Hour))
	seedMembership(ms, "m1", "user-1", "ws-old", base)

	r := NewResolver(ws, ms)
	active, err := r.ResolveActive(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if active.Workspace.ID != "ws-old" {
		t.Errorf("workspace = %q, want ws-old (earliest membership)", active.Workspace.ID)
	}
}

func TestResolveActive_NoMemberships(t *testing.T) {
	r := NewResolver(newMemWorkspaceStore(), newMemMembershipStore())
	active, err := r.ResolveActive(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if active != nil {
		t.Errorf("active = %+v, want nil", active)
	}
}
