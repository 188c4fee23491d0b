package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-fund-registry-service/internal/config"
	"go-fund-registry-service/internal/database"
	"go-fund-registry-service/internal/di"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrationOnly(); err != nil {
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration complete")
		return
	}

	application, err := di.InitializeApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			application.Logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		application.Logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Shutdown(ctx); err != nil {
			application.Logger.Error("shutdown did not complete cleanly", "error", err)
			os.Exit(1)
		}
	}
}

func runMigrationOnly() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	return database.Migrate(db)
}
