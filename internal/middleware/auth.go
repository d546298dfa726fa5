package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursehub-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/metrics"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
)

const userContextKey = "user"

// User is the identity carried by a verified access token.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name,omitempty"`
}

// DenyReason explains why the guard refused a request.
type DenyReason string

const (
	ReasonUnauthenticated DenyReason = "unauthenticated"
	ReasonForbidden       DenyReason = "forbidden"
	ReasonBackendFailure  DenyReason = "backend_failure"
)

// Authorization is the outcome of Resolve: either Authorized or Denied.
type Authorization interface {
	authorization()
}

// Authorized carries the resolved admin caller.
type Authorized struct {
	User    User
	Profile profile.Profile
}

// Denied carries the reason and the underlying cause, if any.
type Denied struct {
	Reason DenyReason
	Err    error
}

func (Authorized) authorization() {}
func (Denied) authorization()     {}

// AppError converts the denial into the matching AppError.
func (d Denied) AppError() *apperrors.AppError {
	switch d.Reason {
	case ReasonForbidden:
		return apperrors.Forbidden("Forbidden: admin access required", d.Err)
	case ReasonBackendFailure:
		return apperrors.Backend("Failed to verify permissions", d.Err)
	default:
		return apperrors.Unauthenticated("Unauthorized", d.Err)
	}
}

// Guard resolves callers from access tokens and enforces the admin flag.
type Guard struct {
	db          *gorm.DB
	secret      string
	cookieName  string
	adminEmails []string
	loginPath   string
	logger      *slog.Logger
}

// NewGuard builds the guard once at startup.
func NewGuard(db *gorm.DB, cfg config.AuthConfig, logger *slog.Logger) *Guard {
	loginPath := cfg.AdminLoginPath
	if loginPath == "" {
		loginPath = "/admin/login"
	}
	return &Guard{
		db:          db,
		secret:      cfg.JWTSecret,
		cookieName:  cfg.CookieName,
		adminEmails: cfg.AdminEmails,
		loginPath:   loginPath,
		logger:      logger,
	}
}

// Authenticate resolves the caller from the Authorization header or the auth cookie.
func (g *Guard) Authenticate(c *gin.Context) (User, error) {
	if usr, ok := UserFromContext(c); ok {
		return usr, nil
	}

	token := g.tokenFrom(c)
	if token == "" {
		return User{}, apperrors.Unauthenticated("Unauthorized", nil)
	}

	claims, err := jwt.VerifyToken(token, g.secret)
	if err != nil {
		if errors.Is(err, jwt.ErrNoSecret) {
			return User{}, apperrors.Backend("Authentication is not configured", err)
		}
		return User{}, apperrors.Unauthenticated("Unauthorized", err)
	}

	id, err := claims.UserID()
	if err != nil {
		return User{}, apperrors.Unauthenticated("Unauthorized", err)
	}

	usr := User{ID: id, Email: strings.ToLower(strings.TrimSpace(claims.Email)), FullName: claims.FullName()}
	c.Set(userContextKey, usr)
	return usr, nil
}

// Resolve runs the admin check: identify the caller, load (or lazily create)
// their profile and require is_admin. It never partially succeeds.
func (g *Guard) Resolve(c *gin.Context) Authorization {
	usr, err := g.Authenticate(c)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrBackend) {
			return Denied{Reason: ReasonBackendFailure, Err: err}
		}
		return Denied{Reason: ReasonUnauthenticated, Err: err}
	}

	p, err := g.loadProfile(c, usr)
	if err != nil {
		return Denied{Reason: ReasonBackendFailure, Err: err}
	}

	if !p.IsAdmin {
		return Denied{Reason: ReasonForbidden}
	}

	return Authorized{User: usr, Profile: p}
}

// loadProfile fetches the caller's profile, creating it when no row exists.
// Admin is granted on creation only to addresses on the configured allow-list.
func (g *Guard) loadProfile(c *gin.Context, usr User) (profile.Profile, error) {
	if p, ok := profile.FromContext(c); ok && p.ID == usr.ID {
		return *p, nil
	}

	db, err := database.Session(c.Request.Context(), g.db)
	if err != nil {
		return profile.Profile{}, err
	}

	p, err := profile.Get(db, usr.ID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		isAdmin := config.ContainsEmail(g.adminEmails, usr.Email)
		p, err = profile.CreateIfMissing(db, profile.CreateInput{
			ID:       usr.ID,
			Email:    usr.Email,
			FullName: usr.FullName,
			IsAdmin:  isAdmin,
		})
		if err == nil {
			g.logger.InfoContext(c.Request.Context(), "profile created for user",
				slog.String("user_id", usr.ID.String()),
				slog.Bool("is_admin", p.IsAdmin),
			)
		}
	}
	if err != nil {
		return profile.Profile{}, err
	}

	c.Set(profile.ContextKey, &p)
	return p, nil
}

// RequireAdmin is the API gate: 401/403 JSON on denial, 500 on backend failure.
func (g *Guard) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch result := g.Resolve(c).(type) {
		case Authorized:
			metrics.RecordAuthDecision("admin_api", "authorized")
			c.Next()
		case Denied:
			metrics.RecordAuthDecision("admin_api", string(result.Reason))
			g.deny(c, result.AppError())
		}
	}
}

// RequireAdminPage is the page gate: denials redirect to the admin login page.
func (g *Guard) RequireAdminPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch result := g.Resolve(c).(type) {
		case Authorized:
			metrics.RecordAuthDecision("admin_page", "authorized")
			c.Next()
		case Denied:
			metrics.RecordAuthDecision("admin_page", string(result.Reason))
			if result.Err != nil {
				g.logger.WarnContext(c.Request.Context(), "admin page access denied",
					slog.String("reason", string(result.Reason)),
					slog.String("error", result.Err.Error()),
				)
			}
			target := g.loginPath + "?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
		}
	}
}

// RequireUser admits any authenticated caller and attaches their profile.
func (g *Guard) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, err := g.Authenticate(c)
		if err != nil {
			metrics.RecordAuthDecision("user", "unauthenticated")
			g.deny(c, err)
			return
		}

		if _, err := g.loadProfile(c, usr); err != nil {
			metrics.RecordAuthDecision("user", string(ReasonBackendFailure))
			g.deny(c, apperrors.Backend("Failed to load profile", err))
			return
		}

		metrics.RecordAuthDecision("user", "authorized")
		c.Next()
	}
}

// OptionalUser attaches the caller when a valid token is present and never rejects.
func (g *Guard) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.tokenFrom(c) == "" {
			c.Next()
			return
		}

		usr, err := g.Authenticate(c)
		if err != nil {
			c.Next()
			return
		}

		if _, err := g.loadProfile(c, usr); err != nil {
			g.logger.WarnContext(c.Request.Context(), "optional profile lookup failed", slog.String("error", err.Error()))
		}
		c.Next()
	}
}

func (g *Guard) deny(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Backend("Internal server error", err)
	}

	var logged error
	if appErr.StatusCode() >= http.StatusInternalServerError {
		logged = appErr
	}
	response.ErrorWithLog(g.logger, c, appErr.StatusCode(), appErr.Message(), logged)
	c.Abort()
}

func (g *Guard) tokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
	}

	if g.cookieName != "" {
		if cookie, err := c.Cookie(g.cookieName); err == nil {
			return strings.TrimSpace(cookie)
		}
	}

	return ""
}

// UserFromContext retrieves the authenticated user from the Gin context.
func UserFromContext(c *gin.Context) (User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return User{}, false
	}
	usr, ok := value.(User)
	return usr, ok
}

// ProfileFromContext retrieves the caller's profile from the Gin context.
func ProfileFromContext(c *gin.Context) (*profile.Profile, bool) {
	return profile.FromContext(c)
}
