// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

// Command api is the entry point for the Comicbox HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Connect to object storage (MinIO).
//  6. Run database migrations (idempotent).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huyndq/comicbox/internal/api"
	"github.com/huyndq/comicbox/internal/core/category"
	"github.com/huyndq/comicbox/internal/core/chapter"
	"github.com/huyndq/comicbox/internal/core/comic"
	"github.com/huyndq/comicbox/internal/core/project"
	"github.com/huyndq/comicbox/internal/core/resource"
	"github.com/huyndq/comicbox/internal/platform/config"
	"github.com/huyndq/comicbox/internal/platform/constants"
	"github.com/huyndq/comicbox/internal/platform/migration"
	pgstore "github.com/huyndq/comicbox/internal/platform/postgres"
	redisstore "github.com/huyndq/comicbox/internal/platform/redis"
	"github.com/huyndq/comicbox/internal/platform/sec"
	"github.com/huyndq/comicbox/internal/platform/storage"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/internal/users/account"
	"github.com/huyndq/comicbox/internal/users/auth"
	"github.com/huyndq/comicbox/internal/users/follow"
	"github.com/huyndq/comicbox/internal/users/subscription"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "comicbox"))
	slog.SetDefault(log)

	log.Info("[Comicbox] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "comicbox"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Object Storage ─────────────────────────────────────────────────
	objectStore, err := storage.NewMinioStore(startupCtx, storage.Options{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
	}, log)
	must(log, err, "connect to object storage")

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Auth Service ───────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckStorage: func() error {
			return objectStore.HealthCheck(context.Background())
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	// The transaction coordinator is shared by every service that mutates
	// more than one table in a single use case.
	coordinator := txn.NewCoordinator(txn.NewPoolStore(pool), log)

	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(rdb)
	authService := auth.NewService(userRepository, sessionRepository, jwtSvc, coordinator)
	authHandler := auth.NewHandler(authService)

	accountRepository := account.NewAccountRepository(pool)
	accountService := account.NewService(accountRepository, sessionRepository, log)
	accountHandler := account.NewHandler(accountService)

	followRepository := follow.NewRepository(pool)
	followService := follow.NewService(followRepository, coordinator, log)
	followHandler := follow.NewHandler(followService)

	subscriptionRepository := subscription.NewRepository(pool)
	subscriptionService := subscription.NewService(subscriptionRepository, coordinator, log)
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	categoryRepository := category.NewRepository(pool)
	categoryService := category.NewService(categoryRepository, log)
	categoryHandler := category.NewHandler(categoryService)

	comicRepository := comic.NewRepository(pool)
	comicService := comic.NewService(comicRepository, categoryRepository, coordinator, log)
	comicHandler := comic.NewHandler(comicService)

	chapterRepository := chapter.NewRepository(pool)
	chapterService := chapter.NewService(chapterRepository, coordinator, log)
	chapterHandler := chapter.NewHandler(chapterService)

	resourceRepository := resource.NewRepository(pool)
	resourceService := resource.NewService(resourceRepository, objectStore, coordinator, log)
	resourceHandler := resource.NewHandler(resourceService)

	projectRepository := project.NewRepository(pool)
	projectService := project.NewService(projectRepository, resourceService, coordinator, log)
	projectHandler := project.NewHandler(projectService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         authHandler,
		Account:      accountHandler,
		Follow:       followHandler,
		Subscription: subscriptionHandler,
		Comic:        comicHandler,
		Category:     categoryHandler,
		Chapter:      chapterHandler,
		Resource:     resourceHandler,
		Project:      projectHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
