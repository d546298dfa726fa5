package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

const (
	eventCheckoutCompleted   = "checkout.session.completed"
	eventSubscriptionUpdated = "customer.subscription.updated"
	eventSubscriptionDeleted = "customer.subscription.deleted"
)

// StripeProvider implements Provider with stripe-go.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProvider builds a provider scoped to secretKey; it never touches
// the stripe package's global key.
func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, webhookSecret: webhookSecret}
}

// CreateCheckoutSession opens a hosted subscription checkout. user_id and
// plan_type travel as metadata on both the session and the subscription.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error) {
	metadata := map[string]string{
		"user_id":   req.UserID.String(),
		"plan_type": string(req.PlanType),
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID.String()),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, providerError(err)
	}

	return Session{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes membership changes.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	if p.webhookSecret == "" {
		return WebhookEvent{}, ErrWebhookNotEnabled
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := WebhookEvent{ID: event.ID, Type: string(event.Type)}

	switch out.Type {
	case eventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return out, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Membership = &profile.MembershipUpdate{
			UserID:           metadataUserID(sess.Metadata, sess.ClientReferenceID),
			StripeCustomerID: customerID(sess.Customer),
			Status:           types.SubscriptionStatusActive,
			PlanType:         metadataPlan(sess.Metadata),
		}

	case eventSubscriptionUpdated, eventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return out, fmt.Errorf("decode subscription: %w", err)
		}
		status := mapSubscriptionStatus(sub.Status)
		if out.Type == eventSubscriptionDeleted {
			status = types.SubscriptionStatusCanceled
		}
		out.Membership = &profile.MembershipUpdate{
			UserID:           metadataUserID(sub.Metadata, ""),
			StripeCustomerID: customerID(sub.Customer),
			Status:           status,
			PlanType:         metadataPlan(sub.Metadata),
		}
	}

	return out, nil
}

func mapSubscriptionStatus(status stripe.SubscriptionStatus) types.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return types.SubscriptionStatusActive
	case stripe.SubscriptionStatusTrialing:
		return types.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return types.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return types.SubscriptionStatusCanceled
	default:
		return types.SubscriptionStatusNone
	}
}

func metadataUserID(metadata map[string]string, fallback string) uuid.UUID {
	raw := metadata["user_id"]
	if raw == "" {
		raw = fallback
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func metadataPlan(metadata map[string]string) *types.PlanType {
	switch plan := types.PlanType(metadata["plan_type"]); plan {
	case types.PlanMonthly, types.PlanYearly:
		return &plan
	default:
		return nil
	}
}

func customerID(customer *stripe.Customer) string {
	if customer == nil {
		return ""
	}
	return customer.ID
}

func providerError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return &ProviderError{Message: stripeErr.Msg, Err: err}
	}
	return &ProviderError{Message: err.Error(), Err: err}
}
