// Package server assembles the HTTP router: global middleware, the /api/v1
// route tree, and the health endpoint.
package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	authhandler "dayplanner-backend/internal/auth/handler"
	"dayplanner-backend/internal/config"
	enthandler "dayplanner-backend/internal/entitlement/handler"
	orghandler "dayplanner-backend/internal/organization/handler"
	"dayplanner-backend/internal/ratelimit"
	"dayplanner-backend/internal/server/middleware"
	"dayplanner-backend/internal/server/respond"
	"dayplanner-backend/internal/session"
	wshandler "dayplanner-backend/internal/workspace/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *sql.DB
	Sessions     *session.Manager
	LoginLimiter ratelimit.Limiter
	Auth         *authhandler.Handler
	Workspaces   *wshandler.Handler
	Orgs         *orghandler.Handler
	Entitlements *enthandler.Handler
}

// NewRouter builds the full route tree. CSRF runs before session auth so a
// missing token is rejected before any handler side effect.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ClientIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.CSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CSRF(d.Config.IsProduction()))

	r.Get("/healthz", healthz(d.DB))

	loginLimit := middleware.RateLimit(d.LoginLimiter, middleware.ClientIPKey("login"), d.Logger)
	requireSession := middleware.RequireSession(d.Sessions)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", d.Auth.Register)
		r.With(loginLimit).Post("/auth/login", d.Auth.Login)
		r.Post("/auth/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/me", d.Auth.Me)
			r.Put("/me", d.Auth.UpdateMe)

			r.Get("/workspaces", d.Workspaces.List)
			r.Post("/workspaces", d.Workspaces.CreatePersonal)
			r.Get("/workspaces/active", d.Workspaces.Active)
			r.Post("/workspaces/{id}/select", d.Workspaces.Select)

			r.Post("/orgs", d.Orgs.Create)
			r.Get("/orgs/{id}/members", d.Orgs.ListMembers)
			r.Patch("/orgs/{id}/members/{userID}", d.Orgs.SetMemberStatus)
			r.Post("/orgs/{id}/invites", d.Orgs.CreateInvite)
			r.Get("/orgs/{id}/invites", d.Orgs.ListInvites)
			r.Post("/orgs/{id}/workspaces", d.Orgs.CreateWorkspace)
			r.Post("/invites/{token}/accept", d.Orgs.AcceptInvite)

			r.Get("/entitlements", d.Entitlements.MyEntitlements)
			r.Get("/plans", d.Entitlements.ListPlans)
			r.Put("/plans/{key}", d.Entitlements.UpsertPlan)
			r.Put("/users/{id}/plan", d.Entitlements.AssignPlan)
		})
	})

	return r
}

// healthz reports liveness plus a database round trip.
func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": err.Error()})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
