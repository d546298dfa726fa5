package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/category"
	"github.com/mo-amir99/coursehub-server-go/internal/features/checkout"
	"github.com/mo-amir99/coursehub-server-go/internal/features/course"
	"github.com/mo-amir99/coursehub-server-go/internal/features/debug"
	"github.com/mo-amir99/coursehub-server-go/internal/features/featureflags"
	"github.com/mo-amir99/coursehub-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/internal/features/section"
	"github.com/mo-amir99/coursehub-server-go/internal/middleware"
	"github.com/mo-amir99/coursehub-server-go/internal/services/courseduration"
	"github.com/mo-amir99/coursehub-server-go/pkg/cache"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/email"
	"github.com/mo-amir99/coursehub-server-go/pkg/health"
)

// Dependencies are the shared services handlers are built from.
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *slog.Logger
	Cache    cache.Client
	Catalog  *cache.Catalog
	Provider checkout.Provider
	Sender   email.Sender
	Guard    *middleware.Guard
	// MediaClient is used by the debug media probe; nil uses a default.
	MediaClient *http.Client
}

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	flags := cfg.Flags
	guard := deps.Guard

	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(deps.DB, deps.Cache, deps.Logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAdmin := guard.RequireAdmin()
	requireUser := guard.RequireUser()

	profileHandler := profile.NewHandler(flags, deps.Logger)
	engine.GET("/admin/session", guard.RequireAdminPage(), profileHandler.Me)

	api := engine.Group("/api")
	admin := api.Group("/admin", requireAdmin)

	durationService := courseduration.NewService(deps.DB, deps.Logger)

	featureflags.RegisterRoutes(api, featureflags.NewHandler(flags))
	profile.RegisterRoutes(api, profileHandler, requireUser)

	category.RegisterRoutes(api, admin, category.NewHandler(deps.DB, deps.Catalog, deps.Logger))
	course.RegisterRoutes(api, admin,
		course.NewHandler(deps.DB, deps.Catalog, durationService, flags, deps.Logger),
		guard.OptionalUser(), requireAdmin)
	section.RegisterRoutes(admin, section.NewHandler(deps.DB, deps.Catalog, deps.Logger))
	lesson.RegisterRoutes(admin, lesson.NewHandler(deps.DB, deps.Catalog, deps.Logger))

	checkout.RegisterRoutes(api,
		checkout.NewHandler(deps.DB, deps.Provider, deps.Sender, cfg.Stripe, flags, deps.Logger),
		requireUser)

	if flags.Features.DebugEndpoints {
		debug.RegisterRoutes(api, debug.NewHandler(deps.DB, deps.MediaClient, deps.Logger), requireAdmin)
		deps.Logger.Warn("debug endpoints enabled", slog.String("prefix", "/api/debug"))
	}
}
