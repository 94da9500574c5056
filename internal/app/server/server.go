package server

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"orbit/internal/domain/audit"
	"orbit/internal/domain/auth"
	"orbit/internal/domain/payroll"
	"orbit/internal/domain/tax"
	"orbit/internal/domain/workforce"
	"orbit/internal/platform/config"
	cryptoutil "orbit/internal/platform/crypto"
	"orbit/internal/platform/db"
	"orbit/internal/platform/jobs"
	"orbit/internal/platform/metrics"
	audithandler "orbit/internal/transport/http/handlers/audit"
	authhandler "orbit/internal/transport/http/handlers/auth"
	payrollhandler "orbit/internal/transport/http/handlers/payroll"
	verifyhandler "orbit/internal/transport/http/handlers/verify"
	workforcehandler "orbit/internal/transport/http/handlers/workforce"
	"orbit/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

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

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key invalid: %v", err)
	}

	tables := tax.Default()
	if cfg.TaxTablesPath != "" {
		tables, err = tax.Load(cfg.TaxTablesPath)
		if err != nil {
			log.Fatalf("tax tables load failed: %v", err)
		}
	}

	collector := metrics.New()
	authStore := auth.NewStore(pool)
	auditor := audit.New(pool)

	workforceStore := workforce.NewStore(pool)
	workforceService := workforce.NewService(workforceStore)

	payrollStore := payroll.NewStore(pool)
	emitter := payroll.NewEmitter(cfg.VerifyBaseURL)
	storage := payroll.NewDiskStorage(cfg.PaystubStorageDir, crypto)
	payrollService := payroll.NewService(payrollStore, tables, emitter, storage, payroll.ServiceOptions{
		RunParallelism:          cfg.RunParallelism,
		ZeroUnknownJurisdiction: cfg.ZeroUnknownJurisdiction(),
		PersistRetries:          cfg.PersistRetries,
		PersistBackoff:          cfg.PersistBackoff,
		OnDocumentRetry:         collector.DocumentRetried,
	})

	runner := jobs.New(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))

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
		router.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).
			Get("/metrics", metricsHandler(collector))
	}

	verifyHandler := verifyhandler.NewHandler(payrollService, collector)
	verifyHandler.RegisterRoutes(router)

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, crypto)
		authHandler.RegisterRoutes(r)

		workforceHandler := workforcehandler.NewHandler(workforceService, workforceStore, auditor, authStore)
		workforceHandler.RegisterRoutes(r)

		payrollHandler := payrollhandler.NewHandler(payrollService, payrollStore, storage, runner, collector, auditor, authStore)
		payrollHandler.RegisterRoutes(r)

		auditHandler := audithandler.NewHandler(auditor, authStore)
		auditHandler.RegisterRoutes(r)
	})

	slog.Info("orbit server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func metricsHandler(collector *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
			slog.Warn("metrics write failed", "err", err)
		}
	}
}
