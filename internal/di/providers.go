package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"go-fund-registry-service/internal/app"
	"go-fund-registry-service/internal/config"
	"go-fund-registry-service/internal/database"
	"go-fund-registry-service/internal/http/handler"
	"go-fund-registry-service/internal/http/middleware"
	"go-fund-registry-service/internal/http/router"
	"go-fund-registry-service/internal/observability"
	"go-fund-registry-service/internal/repository"
	"go-fund-registry-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(provideLogger, provideRuntime)

var RuntimeInfraSet = wire.NewSet(provideDB, provideRedisClient)

var RepositorySet = wire.NewSet(
	repository.NewFundRepository,
	repository.NewInvestorRepository,
	repository.NewInvestmentRepository,
)

var ServiceSet = wire.NewSet(
	service.NewFundService,
	service.NewInvestorService,
	service.NewInvestmentService,
	service.NewAnalyticsService,
	provideIdempotencyStore,
	provideJanitor,
)

var HTTPSet = wire.NewSet(
	handler.NewFundHandler,
	handler.NewInvestorHandler,
	handler.NewInvestmentHandler,
	handler.NewAnalyticsHandler,
	handler.NewHealthHandler,
	provideRouterDependencies,
	router.New,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideLogger(cfg *config.Config) *slog.Logger {
	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	return logger
}

func provideRuntime(cfg *config.Config, logger *slog.Logger) (*observability.Runtime, error) {
	return observability.InitRuntime(context.Background(), cfg, logger)
}

func provideDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

// provideRedisClient connects only when a redis-backed component is
// enabled; everything else runs on the database alone.
func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if !cfg.IdempotencyRedisEnabled && !cfg.RateLimitRedisEnable {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	client.AddHook(observability.NewRedisMetricsHook())
	return client
}

func provideIdempotencyStore(cfg *config.Config, db *gorm.DB, client redis.UniversalClient) service.IdempotencyStore {
	if cfg.IdempotencyRedisEnabled && client != nil {
		return service.NewRedisIdempotencyStore(client, "idem")
	}
	return service.NewDBIdempotencyStore(db)
}

func provideJanitor(cfg *config.Config, store service.IdempotencyStore, logger *slog.Logger) *service.IdempotencyJanitor {
	if !cfg.IdempotencyEnabled {
		return nil
	}
	return service.NewIdempotencyJanitor(store, cfg.IdempotencyCleanupEvery, cfg.IdempotencyCleanupBatch, logger)
}

func provideRouterDependencies(
	fundHandler *handler.FundHandler,
	investorHandler *handler.InvestorHandler,
	investmentHandler *handler.InvestmentHandler,
	analyticsHandler *handler.AnalyticsHandler,
	healthHandler *handler.HealthHandler,
	store service.IdempotencyStore,
	client redis.UniversalClient,
	logger *slog.Logger,
	cfg *config.Config,
) router.Dependencies {
	var limiter middleware.Limiter
	mode := middleware.FailClosed
	if cfg.RateLimitRedisEnable && client != nil {
		limiter = middleware.NewRedisFixedWindowLimiter(client, "rl")
		mode = middleware.FailOpen
	} else {
		limiter = middleware.NewLocalFixedWindowLimiter()
	}
	return router.Dependencies{
		Logger:              logger,
		FundHandler:         fundHandler,
		InvestorHandler:     investorHandler,
		InvestmentHandler:   investmentHandler,
		AnalyticsHandler:    analyticsHandler,
		HealthHandler:       healthHandler,
		IdempotencyStore:    store,
		IdempotencyEnabled:  cfg.IdempotencyEnabled,
		IdempotencyRequired: cfg.IdempotencyRequired,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		APIRateLimitRPM:     cfg.APIRateLimitPerMin,
		RateLimiter:         limiter,
		RateLimitMode:       mode,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
