package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mo-amir99/coursehub-server-go/internal/bootstrap"
	"github.com/mo-amir99/coursehub-server-go/internal/features/checkout"
	"github.com/mo-amir99/coursehub-server-go/internal/http/routes"
	authmiddleware "github.com/mo-amir99/coursehub-server-go/internal/middleware"
	"github.com/mo-amir99/coursehub-server-go/internal/services/courseduration"
	"github.com/mo-amir99/coursehub-server-go/pkg/cache"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/email"
	"github.com/mo-amir99/coursehub-server-go/pkg/health"
	"github.com/mo-amir99/coursehub-server-go/pkg/jobs"
	"github.com/mo-amir99/coursehub-server-go/pkg/logger"
	"github.com/mo-amir99/coursehub-server-go/pkg/metrics"
	"github.com/mo-amir99/coursehub-server-go/pkg/middleware"
	"github.com/mo-amir99/coursehub-server-go/pkg/request"
	"github.com/mo-amir99/coursehub-server-go/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	slog.SetDefault(appLogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Version != "" {
		health.Version = cfg.Version
	}

	shutdownTracing := telemetry.Init(ctx, cfg.Telemetry, cfg.Env, health.Version, appLogger)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			appLogger.Error("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	appLogger.Info("feature flags resolved",
		slog.Bool("test_mode", cfg.Flags.IsTestMode()),
		slog.Bool("has_full_access", cfg.Flags.HasFullAccess()),
		slog.Bool("payment_required", cfg.Flags.IsPaymentRequired()),
	)

	db, err := database.Connect(ctx, cfg.Database, appLogger, bootstrap.Models()...)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	if err := bootstrap.ApplyDatabaseMigrations(db, cfg, appLogger); err != nil {
		appLogger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if _, err := bootstrap.EnsureAdminProfiles(db, cfg.Auth.AdminEmails, appLogger); err != nil {
		appLogger.Error("admin seed failed", slog.String("error", err.Error()))
	}

	cacheClient, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Warn("redis unavailable, using in-memory catalog cache", slog.String("error", err.Error()))
		cacheClient = cache.NewMemoryCache()
	}
	defer cacheClient.Close()

	catalog := cache.NewCatalog(cacheClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second, appLogger)

	var provider checkout.Provider
	if cfg.Stripe.Configured() {
		provider = checkout.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	} else {
		appLogger.Warn("stripe is not configured; checkout endpoints will answer 500")
	}

	sender := email.NewSender(cfg.Email.ResendAPIKey, cfg.Email.From)
	guard := authmiddleware.NewGuard(db, cfg.Auth, appLogger)

	router := gin.New()

	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Telemetry.Enabled {
		router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	router.Use(middleware.RequestID())                       // Add request IDs for tracing
	router.Use(middleware.Compression(middleware.BestSpeed)) // Compress responses (gzip)
	router.Use(middleware.RequestLogger(appLogger))          // Log all requests
	router.Use(middleware.SecurityHeaders())                 // Add security headers
	router.Use(middleware.CacheControl())                    // Set cache headers
	router.Use(middleware.RequestSizeLimit(1 << 20))         // 1MB limit
	router.Use(metrics.Middleware())                         // Collect Prometheus metrics
	router.Use(request.Handler(appLogger))                   // Render errors left on the context

	// Rate limiting (100 requests per minute per IP)
	rateLimiter := middleware.NewRateLimiter(100, time.Minute)
	go rateLimiter.Run(ctx)
	router.Use(rateLimiter.Middleware())

	scheduler := jobs.NewScheduler(appLogger)
	scheduler.AddJob(courseduration.NewReconcileJob(db, appLogger), cfg.Jobs.DurationReconcileInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	routes.Register(router, routes.Dependencies{
		Config:   cfg,
		DB:       db,
		Logger:   appLogger,
		Cache:    cacheClient,
		Catalog:  catalog,
		Provider: provider,
		Sender:   sender,
		Guard:    guard,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}
