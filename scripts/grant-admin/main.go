package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email address of the profile to change")
	revoke := flag.Bool("revoke", false, "remove admin instead of granting it")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: grant-admin -email user@example.com [-revoke]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	cfg.Database.RunMigrations = false
	db, err := database.ConnectWithRetry(context.Background(), cfg.Database, appLogger, 0, 0)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	changed, err := profile.SetAdminByEmail(db, *email, !*revoke)
	if err != nil {
		appLogger.Error("Failed to update profile", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if changed == 0 {
		fmt.Printf("No change: no profile for %s, or it is already in the requested state.\n", *email)
		fmt.Println("Profiles are created on first sign-in.")
		return
	}

	action := "granted to"
	if *revoke {
		action = "revoked from"
	}
	fmt.Printf("Admin %s %s\n", action, *email)
}
