package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rota/internal/domain/audit"
	"rota/internal/domain/auth"
	"rota/internal/domain/notifications"
	"rota/internal/domain/planner"
	"rota/internal/domain/reports"
	"rota/internal/domain/requests"
	"rota/internal/domain/schedule"
	"rota/internal/domain/workplace"
	"rota/internal/platform/config"
	"rota/internal/platform/db"
	"rota/internal/platform/email"
	"rota/internal/platform/metrics"
	audithandler "rota/internal/transport/http/handlers/audit"
	authhandler "rota/internal/transport/http/handlers/auth"
	notificationshandler "rota/internal/transport/http/handlers/notifications"
	plannerhandler "rota/internal/transport/http/handlers/planner"
	reportshandler "rota/internal/transport/http/handlers/reports"
	requestshandler "rota/internal/transport/http/handlers/requests"
	schedulehandler "rota/internal/transport/http/handlers/schedule"
	usershandler "rota/internal/transport/http/handlers/users"
	workplaceshandler "rota/internal/transport/http/handlers/workplaces"
	"rota/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	if cfg.MetricsEnabled {
		metrics.Init()
	}

	auditSvc := audit.New(pool)
	authSvc := auth.NewService(auth.NewStore(pool))
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg))
	scheduleSvc := schedule.NewService(schedule.NewStore(pool))
	plannerSvc := planner.NewService(planner.NewStore(pool))
	requestsSvc := requests.NewService(requests.NewStore(pool))
	workplaceSvc := workplace.NewService(workplace.NewStore(pool))
	reportsSvc := reports.NewService(reports.NewStore(pool))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	if cfg.MetricsEnabled {
		router.Use(metrics.Instrument)
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	accessTTL := time.Duration(cfg.AccessTokenMinutes) * time.Minute
	refreshTTL := time.Duration(cfg.RefreshTokenHours) * time.Hour

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc, auditSvc, cfg.JWTSecret, accessTTL, refreshTTL).RegisterRoutes(r)
		schedulehandler.NewHandler(scheduleSvc, notifySvc, auditSvc, cfg.MaxActiveWarnAfter).RegisterRoutes(r)
		plannerhandler.NewHandler(plannerSvc).RegisterRoutes(r)
		requestshandler.NewHandler(requestsSvc, notifySvc, auditSvc).RegisterRoutes(r)
		workplaceshandler.NewHandler(workplaceSvc, auditSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, cfg.ExportRowLimit).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		usershandler.NewHandler(authSvc, auditSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	log.Printf("rota server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
