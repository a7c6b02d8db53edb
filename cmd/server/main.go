// Command server runs the retirement portal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	identityapp "github.com/portal/backend/internal/application/identity"
	retirementapp "github.com/portal/backend/internal/application/retirement"
	"github.com/portal/backend/internal/infrastructure/auth"
	"github.com/portal/backend/internal/infrastructure/cache"
	"github.com/portal/backend/internal/infrastructure/config"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/infrastructure/persistence"
	"github.com/portal/backend/internal/infrastructure/ratelimit"
	"github.com/portal/backend/internal/infrastructure/research"
	"github.com/portal/backend/internal/infrastructure/telemetry"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/handler"
	"github.com/portal/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	log.Info("Starting retirement portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(cfg.Database.DBName); err != nil {
			return fmt.Errorf("database tracing: %w", err)
		}
	}
	if cfg.Database.Driver == "sqlite" || cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	log.Info("Database connected")

	revocations, limiter, redisCheck, closeRedis, err := sessionBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRedis()
	defer limiter.Stop()

	metrics := telemetry.NewMetrics()

	userRepo := persistence.NewGormUserRepository(db.DB)
	allocRepo := persistence.NewGormAllocationRepository(db.DB)
	contributionsRepo := persistence.NewGormContributionsRepository(db.DB)
	memoRepo := persistence.NewGormMemoRepository(db.DB)

	templates, err := view.Load()
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	engine, err := router.New(router.Dependencies{
		Config:    cfg,
		Logger:    log,
		Templates: templates,
		Metrics:   metrics,
		Limiter:   limiter,
		Auth: identityapp.NewAuthService(userRepo, allocRepo,
			auth.NewSessionService(cfg.Session), revocations, metrics, log),
		Profiles:      identityapp.NewProfileService(userRepo, log),
		Benefits:      identityapp.NewBenefitsService(userRepo, log),
		Contributions: retirementapp.NewContributionsService(contributionsRepo, log),
		Allocations:   retirementapp.NewAllocationsService(allocRepo),
		Memos:         retirementapp.NewMemoService(memoRepo, log),
		Quotes:        research.NewClient(cfg.Research, research.WithRecorder(metrics)),
		DBCheck:       db.Ping,
		RedisCheck:    redisCheck,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

// sessionBackends picks Redis-backed revocation and rate limiting when Redis
// is enabled, in-memory otherwise.
func sessionBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (
	auth.RevocationStore, stoppableLimiter, handler.Check, func(), error,
) {
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-memory session revocation and rate limiting")
		return auth.NewInMemoryRevocationStore(),
			ratelimit.NewMemoryLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow),
			nil, func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("Error closing Redis", zap.Error(err))
		}
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	var universal redis.UniversalClient = client
	return auth.NewRedisRevocationStore(universal),
		ratelimit.NewRedisLimiter(universal, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, "portal", log),
		ping, closeFn, nil
}

type stoppableLimiter interface {
	ratelimit.Limiter
	Stop()
}
