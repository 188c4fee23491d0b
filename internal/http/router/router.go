package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"go-fund-registry-service/internal/http/handler"
	"go-fund-registry-service/internal/http/middleware"
	"go-fund-registry-service/internal/service"
)

type Dependencies struct {
	Logger *slog.Logger

	FundHandler       *handler.FundHandler
	InvestorHandler   *handler.InvestorHandler
	InvestmentHandler *handler.InvestmentHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	HealthHandler     *handler.HealthHandler

	IdempotencyStore    service.IdempotencyStore
	IdempotencyEnabled  bool
	IdempotencyRequired bool
	IdempotencyTTL      time.Duration

	APIRateLimitRPM int
	RateLimiter     middleware.Limiter
	RateLimitMode   middleware.FailureMode
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", dep.HealthHandler.Live)
	r.Get("/healthz/db", dep.HealthHandler.Ready)

	limiter := dep.RateLimiter
	if limiter == nil {
		limiter = middleware.NewLocalFixedWindowLimiter()
	}
	mode := dep.RateLimitMode
	if mode == "" {
		mode = middleware.FailOpen
	}
	apiLimit := middleware.NewDistributedRateLimiter(limiter, dep.APIRateLimitRPM, time.Minute, mode, "api")

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(apiLimit.Middleware())

		api.Route("/funds", func(funds chi.Router) {
			funds.Get("/", dep.FundHandler.List)
			funds.With(dep.idempotent("funds.create")).Post("/", dep.FundHandler.Create)

			funds.Route("/{fund_id}", func(fund chi.Router) {
				fund.Get("/", dep.FundHandler.Get)
				fund.With(dep.idempotent("funds.update")).Put("/", dep.FundHandler.Update)
				fund.Get("/investments", dep.InvestmentHandler.ListByFund)
				fund.With(dep.idempotent("investments.create")).Post("/investments", dep.InvestmentHandler.Create)
				fund.Get("/analytics", dep.AnalyticsHandler.FundAnalytics)
			})
		})

		api.Route("/investors", func(investors chi.Router) {
			investors.Get("/", dep.InvestorHandler.List)
			investors.With(dep.idempotent("investors.create")).Post("/", dep.InvestorHandler.Create)
		})
	})

	return r
}

func (d Dependencies) idempotent(scope string) func(http.Handler) http.Handler {
	if !d.IdempotencyEnabled || d.IdempotencyStore == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return middleware.NewIdempotency(d.IdempotencyStore, scope, d.IdempotencyTTL, d.IdempotencyRequired, logger).Middleware()
}
