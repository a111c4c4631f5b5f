// seed loads the subscription plan catalog and development accounts.
// Idempotent: plans upsert in place and existing users are skipped.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"dayplanner-backend/internal/config"
	"dayplanner-backend/internal/db"
	entdomain "dayplanner-backend/internal/entitlement/domain"
	entrepo "dayplanner-backend/internal/entitlement/repository"
	"dayplanner-backend/internal/security"
	userdomain "dayplanner-backend/internal/user/domain"
	userrepo "dayplanner-backend/internal/user/repository"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password-123"
	devUserEmail  = "dev@example.com"
	devPassword   = "password123"
)

func catalog() []*entdomain.Plan {
	return []*entdomain.Plan{
		{
			Key:        entdomain.PlanFree,
			Name:       "Free",
			PriceCents: 0,
			Features: map[string]bool{
				entdomain.FeatureOrgWorkspaces:  false,
				entdomain.FeatureSharedPlanning: false,
				entdomain.FeatureAPIAccess:      false,
			},
			Limits: map[string]int{
				entdomain.LimitPersonalWorkspaces: 1,
				entdomain.LimitOrgMembers:         3,
				entdomain.LimitTasksPerDay:        20,
			},
		},
		{
			Key:        entdomain.PlanPro,
			Name:       "Pro",
			PriceCents: 900,
			Features: map[string]bool{
				entdomain.FeatureOrgWorkspaces:  true,
				entdomain.FeatureSharedPlanning: true,
				entdomain.FeatureAPIAccess:      false,
			},
			Limits: map[string]int{
				entdomain.LimitPersonalWorkspaces: 10,
				entdomain.LimitOrgMembers:         25,
				entdomain.LimitTasksPerDay:        200,
			},
		},
		{
			Key:        entdomain.PlanEnterprise,
			Name:       "Enterprise",
			PriceCents: 4900,
			Features: map[string]bool{
				entdomain.FeatureOrgWorkspaces:  true,
				entdomain.FeatureSharedPlanning: true,
				entdomain.FeatureAPIAccess:      true,
			},
			Limits: map[string]int{
				entdomain.LimitPersonalWorkspaces: entdomain.UnlimitedLimit,
				entdomain.LimitOrgMembers:         entdomain.UnlimitedLimit,
				entdomain.LimitTasksPerDay:        entdomain.UnlimitedLimit,
			},
		},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	plans := entrepo.NewPostgresRepository(conn)
	users := userrepo.NewPostgresRepository(conn)
	hasher := security.NewHasher(cfg.BcryptCost)

	for _, p := range catalog() {
		if err := plans.Upsert(ctx, p); err != nil {
			log.Fatalf("seed plan %s: %v", p.Key, err)
		}
		log.Printf("plan %s seeded", p.Key)
	}

	seedUser(ctx, users, hasher, adminEmail, adminPassword, "Admin", true)
	seedUser(ctx, users, hasher, devUserEmail, devPassword, "Dev User", false)
}

func seedUser(ctx context.Context, users userrepo.Repository, hasher *security.Hasher, email, password, name string, isAdmin bool) {
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatalf("seed check %s: %v", email, err)
	}
	if existing != nil {
		log.Printf("user %s already exists, skipping", email)
		return
	}

	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		PlanKey:      entdomain.PlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		log.Fatalf("seed user %s: %v", email, err)
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("seed user %s: %v", email, err)
	}
	log.Printf("user %s seeded", email)
}
