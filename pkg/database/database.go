package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/pkg/config"
)

// ErrNotConfigured is returned by Session when no backend handle exists.
var ErrNotConfigured = errors.New("database not configured")

// Connect establishes a GORM connection using the provided configuration with retry logic.
// Models are auto-migrated when cfg.RunMigrations is set.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger, models ...interface{}) (*gorm.DB, error) {
	return ConnectWithRetry(ctx, cfg, log, 5, time.Second, models...)
}

// ConnectWithRetry establishes a GORM connection with exponential backoff and jitter.
func ConnectWithRetry(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger, maxRetries int, initialBackoff time.Duration, models ...interface{}) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			sleepTime := backoffFor(attempt, initialBackoff)

			log.Warn("retrying database connection",
				slog.Int("attempt", attempt),
				slog.Int("max_retries", maxRetries),
				slog.Duration("backoff", sleepTime),
				slog.String("error", err.Error()),
			)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
			case <-time.After(sleepTime):
			}
		}

		db, err = connectOnce(ctx, cfg, log, models)
		if err == nil {
			if attempt > 0 {
				log.Info("database connection established after retry", slog.Int("attempts", attempt+1))
			}
			return db, nil
		}

		log.Error("database connection attempt failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", maxRetries+1),
			slog.String("error", err.Error()),
		)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries+1, err)
}

// backoffFor doubles the delay per attempt and adds up to 25% jitter.
func backoffFor(attempt int, initial time.Duration) time.Duration {
	backoff := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	jitter := time.Duration(float64(backoff) * 0.25 * rand.Float64())
	return backoff + jitter
}

func connectOnce(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger, models []interface{}) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 NewCustomLogger(log, 200*time.Millisecond),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.Use(NewReconnectPlugin(log)); err != nil {
		return nil, fmt.Errorf("register reconnect plugin: %w", err)
	}

	if !cfg.RunMigrations {
		log.Info("skipping auto-migration (COURSEHUB_DB_RUN_MIGRATIONS=false)")
		return db, nil
	}

	if err := Migrate(db, log, models...); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate auto-migrates the given models.
func Migrate(db *gorm.DB, log *slog.Logger, models ...interface{}) error {
	if len(models) == 0 {
		return nil
	}

	log.Info("running schema auto-migration", slog.Int("models", len(models)))
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("database schema migrated successfully")
	return nil
}

// Session returns the request-scoped handle used by handlers.
func Session(ctx context.Context, db *gorm.DB) (*gorm.DB, error) {
	if db == nil {
		return nil, ErrNotConfigured
	}
	return db.WithContext(ctx), nil
}

// Close gracefully closes the underlying sql.DB connection pool.
func Close(db *gorm.DB, log *slog.Logger) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	log.Info("database connection closed")
	return nil
}
