package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mo-amir99/coursehub-server-go/internal/bootstrap"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// This command always migrates, whatever the server setting is.
	cfg.Database.RunMigrations = true

	db, err := database.ConnectWithRetry(context.Background(), cfg.Database, appLogger, 2, 0, bootstrap.Models()...)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	if err := bootstrap.ApplyDatabaseMigrations(db, cfg, appLogger); err != nil {
		appLogger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	promoted, err := bootstrap.EnsureAdminProfiles(db, cfg.Auth.AdminEmails, appLogger)
	if err != nil {
		appLogger.Error("Failed to seed admin profiles", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("\nSchema is up to date (%d tables). Admin profiles promoted: %d\n", len(bootstrap.Models()), promoted)
}
