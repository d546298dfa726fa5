package testutil

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mo-amir99/coursehub-server-go/internal/bootstrap"
	"github.com/mo-amir99/coursehub-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	applog "github.com/mo-amir99/coursehub-server-go/pkg/logger"
)

const (
	// JWTSecret signs every token minted by Token.
	JWTSecret = "test-secret"
	// AdminEmail is on the allow-list of every config built here.
	AdminEmail = "admin@example.com"
	// WebhookSecret verifies signed webhook payloads in tests.
	WebhookSecret = "whsec_test"
)

var dbSeq atomic.Int64

func Logger() *slog.Logger {
	return applog.Discard()
}

// DB opens a private in-memory sqlite database with every table migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:coursehub_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	// One connection keeps the shared in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(bootstrap.Models()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// Config returns a config with auth wired for Token and the given flags.
func Config(flags config.Flags) *config.Config {
	return &config.Config{
		Env:     "test",
		Version: "test",
		Auth: config.AuthConfig{
			JWTSecret:      JWTSecret,
			CookieName:     "sb-access-token",
			AdminEmails:    []string{AdminEmail},
			AdminLoginPath: "/admin/login",
		},
		Stripe: config.StripeConfig{
			SecretKey:     "sk_test_123",
			WebhookSecret: WebhookSecret,
			SiteURL:       "http://localhost:3000",
			Currency:      "usd",
			Plans: []config.Plan{
				{Type: "monthly", PriceID: "price_monthly", Currency: "usd", Interval: "month"},
				{Type: "yearly", PriceID: "price_yearly", Currency: "usd", Interval: "year"},
			},
		},
		Email: config.EmailConfig{From: "CourseHub <noreply@example.com>", SiteURL: "http://localhost:3000"},
		Flags: flags,
	}
}

// Token mints an access token the guard accepts.
func Token(tb testing.TB, userID uuid.UUID, email string) string {
	tb.Helper()
	token, err := jwt.GenerateAccessToken(userID, email, JWTSecret, time.Hour)
	if err != nil {
		tb.Fatalf("sign token: %v", err)
	}
	return token
}
