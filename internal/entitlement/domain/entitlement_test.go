package domain

import "testing"

func TestFeatureAllowed(t *testing.T) {
	ent := &Entitlements{Features: map[string]bool{
		FeatureOrgWorkspaces: true,
		FeatureAPIAccess:     false,
	}}

	if !ent.FeatureAllowed(FeatureOrgWorkspaces) {
		t.Error("enabled feature reported disallowed")
	}
	if ent.FeatureAllowed(FeatureAPIAccess) {
		t.Error("feature set to false reported allowed")
	}
	if ent.FeatureAllowed("absent_key") {
		t.Error("absent key reported allowed")
	}
}

func TestLimitValue(t *testing.T) {
	ent := &Entitlements{Limits: map[string]int{LimitOrgMembers: 3}}

	if got := ent.LimitValue(LimitOrgMembers); got != 3 {
		t.Errorf("LimitValue = %d, want 3", got)
	}
	if got := ent.LimitValue("absent_key"); got != 0 {
		t.Errorf("absent key LimitValue = %d, want 0", got)
	}
}

func TestAdminOverridesEverything(t *testing.T) {
	ent := &Entitlements{IsAdmin: true}

	if !ent.FeatureAllowed("anything") {
		t.Error("admin feature gate denied")
	}
	if got := ent.LimitValue("anything"); got != UnlimitedLimit {
		t.Errorf("admin LimitValue = %d, want UnlimitedLimit", got)
	}
}

func TestDefaultFreePlan(t *testing.T) {
	p := DefaultFreePlan()
	if p.Key != PlanFree {
		t.Errorf("key = %q, want free", p.Key)
	}
	for _, f := range []string{FeatureOrgWorkspaces, FeatureSharedPlanning, FeatureAPIAccess} {
		if p.Features[f] {
			t.Errorf("free plan enables %s", f)
		}
	}
	if p.Limits[LimitPersonalWorkspaces] != 1 {
		t.Errorf("personal_workspaces = %d, want 1", p.Limits[LimitPersonalWorkspaces])
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default plan invalid: %v", err)
	}
}

func TestPlanValidate(t *testing.T) {
	if err := (&Plan{Key: "", Name: "X"}).Validate(); err == nil {
		t.Error("empty key accepted")
	}
	if err := (&Plan{Key: "x", Name: ""}).Validate(); err == nil {
		t.Error("empty name accepted")
	}
	if err := (&Plan{Key: "x", Name: "X", Limits: map[string]int{"a": -1}}).Validate(); err == nil {
		t.Error("negative limit accepted")
	}
}
