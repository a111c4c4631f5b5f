package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dayplanner-backend/internal/audit"
	auditrepo "dayplanner-backend/internal/audit/repository"
	authhandler "dayplanner-backend/internal/auth/handler"
	"dayplanner-backend/internal/config"
	"dayplanner-backend/internal/db"
	"dayplanner-backend/internal/entitlement/engine"
	enthandler "dayplanner-backend/internal/entitlement/handler"
	entrepo "dayplanner-backend/internal/entitlement/repository"
	entservice "dayplanner-backend/internal/entitlement/service"
	orghandler "dayplanner-backend/internal/organization/handler"
	orgrepo "dayplanner-backend/internal/organization/repository"
	orgservice "dayplanner-backend/internal/organization/service"
	"dayplanner-backend/internal/ratelimit"
	"dayplanner-backend/internal/security"
	"dayplanner-backend/internal/server"
	"dayplanner-backend/internal/server/middleware"
	"dayplanner-backend/internal/session"
	"dayplanner-backend/internal/telemetry"
	"dayplanner-backend/internal/telemetry/otel"
	"dayplanner-backend/internal/telemetry/producer"
	userrepo "dayplanner-backend/internal/user/repository"
	userservice "dayplanner-backend/internal/user/service"
	wshandler "dayplanner-backend/internal/workspace/handler"
	wsrepo "dayplanner-backend/internal/workspace/repository"
	wsservice "dayplanner-backend/internal/workspace/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "dayplanner-server", cfg.OTLPInsecure, logger)
	if err != nil {
		logger.Fatal("otel providers", zap.Error(err))
	}
	providers.SetGlobal()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutCtx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
	}()

	// Events go to Kafka when brokers are configured, otherwise to the OTel
	// log pipeline (a no-op when no OTLP endpoint is set either).
	var emitter telemetry.EventEmitter = otel.NewEventEmitter(providers.LoggerProvider)
	if brokers := cfg.EventKafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.EventKafkaTopic)
		if err != nil {
			logger.Fatal("kafka producer", zap.Error(err))
		}
		defer kp.Close()
		emitter = kp
	}

	tokens, err := security.NewTokenProvider(cfg.SessionSecret, "dayplanner", cfg.SessionLifetime())
	if err != nil {
		logger.Fatal("token provider", zap.Error(err))
	}
	sessions := session.NewManager(tokens, cfg.IsProduction())
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(database)
	workspaces := wsrepo.NewPostgresRepository(database)
	memberships := wsrepo.NewPostgresMembershipRepository(database)
	orgs := orgrepo.NewPostgresRepository(database)
	orgMembers := orgrepo.NewPostgresMemberRepository(database)
	invites := orgrepo.NewPostgresInviteRepository(database)
	plans := entrepo.NewPostgresRepository(database)
	auditLogs := auditrepo.NewPostgresRepository(database)

	evaluator, err := engine.NewOPAEvaluator()
	if err != nil {
		logger.Fatal("entitlement policy", zap.Error(err))
	}
	entitlements := entservice.NewService(users, plans, evaluator, logger)

	auth := userservice.NewAuthService(users, workspaces, memberships, hasher)
	resolver := wsservice.NewResolver(workspaces, memberships)
	workspaceSvc := wsservice.NewService(workspaces, memberships, entitlements)
	orgSvc := orgservice.NewService(orgs, orgMembers, invites, invites, workspaces, memberships, entitlements)

	auditLogger := audit.NewLogger(auditLogs, middleware.GetClientIP, logger)
	loginLimiter := ratelimit.NewWindowLimiter(cfg.LoginRateMax, cfg.LoginWindow())

	router := server.NewRouter(server.Deps{
		Config:       cfg,
		Logger:       logger,
		DB:           database,
		Sessions:     sessions,
		LoginLimiter: loginLimiter,
		Auth:         authhandler.NewHandler(auth, users, sessions, auditLogger, emitter, logger),
		Workspaces:   wshandler.NewHandler(workspaceSvc, resolver, memberships, entitlements, cfg.IsProduction(), logger),
		Orgs:         orghandler.NewHandler(orgSvc, entitlements, auditLogger, emitter, logger),
		Entitlements: enthandler.NewHandler(entitlements, users, auditLogger, emitter, logger),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	// Let in-flight async event emits finish before the producer closes.
	time.Sleep(telemetry.ShutdownDrainDuration)
	logger.Info("http server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
