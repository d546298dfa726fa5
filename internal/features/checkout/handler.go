package checkout

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/internal/middleware"
	"github.com/mo-amir99/coursehub-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/email"
	"github.com/mo-amir99/coursehub-server-go/pkg/metrics"
	"github.com/mo-amir99/coursehub-server-go/pkg/request"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

const maxWebhookBody = 64 << 10

// Handler serves checkout, plan and webhook endpoints.
type Handler struct {
	db       *gorm.DB
	provider Provider
	sender   email.Sender
	stripe   config.StripeConfig
	flags    config.Flags
	logger   *slog.Logger
}

// NewHandler constructs a checkout handler instance.
func NewHandler(db *gorm.DB, provider Provider, sender email.Sender, stripeCfg config.StripeConfig, flags config.Flags, logger *slog.Logger) *Handler {
	return &Handler{
		db:       db,
		provider: provider,
		sender:   sender,
		stripe:   stripeCfg,
		flags:    flags,
		logger:   logger,
	}
}

type sessionRequest struct {
	PriceID  string `json:"priceId"`
	PlanType string `json:"planType"`
}

// CreateSession opens a subscription checkout for the caller.
func (h *Handler) CreateSession(c *gin.Context) {
	if !h.stripe.Configured() || h.provider == nil {
		metrics.RecordCheckoutSession("unknown", "not_configured")
		h.respondError(c, ErrNotConfigured, "Stripe is not configured")
		return
	}
	if !h.flags.IsPaymentRequired() {
		metrics.RecordCheckoutSession("unknown", "payments_disabled")
		h.respondError(c, ErrPaymentsDisabled, "Payments are disabled")
		return
	}

	usr, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req sessionRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to create checkout session")
		return
	}

	priceID := strings.TrimSpace(req.PriceID)
	planType := types.PlanType(strings.ToLower(strings.TrimSpace(req.PlanType)))
	if priceID == "" || planType == "" {
		h.respondError(c, ErrMissingFields, "Failed to create checkout session")
		return
	}
	if planType != types.PlanMonthly && planType != types.PlanYearly {
		h.respondError(c, ErrInvalidPlanType, "Failed to create checkout session")
		return
	}
	if len(h.stripe.Plans) > 0 {
		if plan, ok := h.stripe.PlanByType(string(planType)); !ok || plan.PriceID != priceID {
			h.respondError(c, ErrPriceMismatch, "Failed to create checkout session")
			return
		}
	}

	sessionReq := SessionRequest{
		PriceID:    priceID,
		PlanType:   planType,
		UserID:     usr.ID,
		Email:      usr.Email,
		SuccessURL: SuccessURL(h.stripe.SiteURL),
		CancelURL:  CancelURL(h.stripe.SiteURL),
	}
	if p, ok := middleware.ProfileFromContext(c); ok {
		if sessionReq.Email == "" {
			sessionReq.Email = p.Email
		}
		if p.StripeCustomerID != nil {
			sessionReq.CustomerID = *p.StripeCustomerID
		}
	}

	session, err := h.provider.CreateCheckoutSession(c.Request.Context(), sessionReq)
	if err != nil {
		metrics.RecordCheckoutSession(string(planType), "provider_error")
		h.respondError(c, err, "Failed to create checkout session")
		return
	}

	metrics.RecordCheckoutSession(string(planType), "created")
	h.logger.InfoContext(c.Request.Context(), "checkout session created",
		slog.String("user_id", usr.ID.String()),
		slog.String("plan_type", string(planType)),
		slog.String("session_id", session.ID),
	)

	response.OK(c, session)
}

// Plans lists the configured membership prices.
func (h *Handler) Plans(c *gin.Context) {
	plans := h.stripe.Plans
	if plans == nil {
		plans = []config.Plan{}
	}
	response.OKWithCache(c, gin.H{
		"plans":           plans,
		"paymentRequired": h.flags.IsPaymentRequired(),
	}, 300)
}

// Webhook applies verified subscription events to profiles.
func (h *Handler) Webhook(c *gin.Context) {
	if h.provider == nil {
		h.respondError(c, ErrWebhookNotEnabled, "Webhook is not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := h.provider.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		metrics.RecordWebhookEvent("unknown", "rejected")
		h.respondError(c, err, "Failed to process webhook")
		return
	}

	if event.Membership == nil {
		metrics.RecordWebhookEvent(event.Type, "ignored")
		response.OK(c, gin.H{"received": true})
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		metrics.RecordWebhookEvent(event.Type, "error")
		h.respondError(c, err, "Failed to process webhook")
		return
	}

	previous, lookupErr := lookupProfile(db, *event.Membership)
	updated, err := profile.ApplyMembership(db, *event.Membership)
	if errors.Is(err, profile.ErrProfileNotFound) {
		metrics.RecordWebhookEvent(event.Type, "unmatched")
		h.logger.WarnContext(c.Request.Context(), "webhook event matched no profile",
			slog.String("event_id", event.ID),
			slog.String("type", event.Type),
		)
		response.OK(c, gin.H{"received": true})
		return
	}
	if err != nil {
		metrics.RecordWebhookEvent(event.Type, "error")
		h.respondError(c, err, "Failed to process webhook")
		return
	}

	metrics.RecordWebhookEvent(event.Type, "applied")
	h.logger.InfoContext(c.Request.Context(), "membership updated",
		slog.String("event_id", event.ID),
		slog.String("user_id", updated.ID.String()),
		slog.String("status", string(updated.SubscriptionStatus)),
	)

	if lookupErr == nil && !previous.HasActiveMembership() && updated.HasActiveMembership() {
		h.notifyActivated(c, updated)
	}

	response.OK(c, gin.H{"received": true})
}

func (h *Handler) notifyActivated(c *gin.Context, p profile.Profile) {
	if h.sender == nil || p.Email == "" {
		return
	}

	name := ""
	if p.FullName != nil {
		name = *p.FullName
	}
	plan := ""
	if p.PlanType != nil {
		plan = string(*p.PlanType)
	}

	if err := email.SendMembershipActivated(c.Request.Context(), h.sender, p.Email, name, plan, h.stripe.SiteURL); err != nil {
		h.logger.WarnContext(c.Request.Context(), "membership email failed",
			slog.String("user_id", p.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func lookupProfile(db *gorm.DB, update profile.MembershipUpdate) (profile.Profile, error) {
	if update.UserID != uuid.Nil {
		return profile.Get(db, update.UserID)
	}
	var p profile.Profile
	err := db.First(&p, "stripe_customer_id = ?", update.StripeCustomerID).Error
	return p, err
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	var appErr *apperrors.AppError
	var providerErr *ProviderError
	switch {
	case errors.As(err, &appErr):
		status = appErr.StatusCode()
		message = appErr.Message()
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Missing priceId or planType"
	case errors.Is(err, ErrInvalidPlanType), errors.Is(err, ErrPriceMismatch):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ErrInvalidSignature):
		status = http.StatusBadRequest
		message = "Invalid signature"
	case errors.As(err, &providerErr):
		message = providerErr.Message
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
