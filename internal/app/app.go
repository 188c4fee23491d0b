package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"go-fund-registry-service/internal/config"
	"go-fund-registry-service/internal/database"
	"go-fund-registry-service/internal/observability"
	"go-fund-registry-service/internal/service"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Server  *http.Server
	DB      *gorm.DB
	Runtime *observability.Runtime
	Janitor *service.IdempotencyJanitor

	janitorCancel context.CancelFunc
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	db *gorm.DB,
	runtime *observability.Runtime,
	janitor *service.IdempotencyJanitor,
) *App {
	return &App{
		Config:  cfg,
		Logger:  logger,
		Server:  server,
		DB:      db,
		Runtime: runtime,
		Janitor: janitor,
	}
}

// Start runs migrations, optionally seeds, launches the idempotency
// janitor, and blocks serving HTTP until Shutdown or a listener error.
func (a *App) Start() error {
	if err := database.Migrate(a.DB); err != nil {
		return err
	}
	if a.Config.SeedOnStart {
		report, err := database.SeedSync(a.DB)
		if err != nil {
			return err
		}
		if !report.Noop {
			a.Logger.Info("seed data applied",
				"funds", report.CreatedFunds,
				"investors", report.CreatedInvestors,
				"investments", report.CreatedInvestments,
			)
		}
	}

	if a.Janitor != nil {
		ctx, cancel := context.WithCancel(context.Background())
		a.janitorCancel = cancel
		go a.Janitor.Run(ctx)
	}

	a.Logger.Info("server starting", "addr", a.Server.Addr, "env", a.Config.Env)
	err := a.Server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests first, then stops the janitor,
// flushes telemetry, and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := a.Server.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if a.janitorCancel != nil {
		a.janitorCancel()
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Runtime.Shutdown(flushCtx); err != nil && firstErr == nil {
		firstErr = err
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
