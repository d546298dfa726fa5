package checkout

import (
	"context"

	"github.com/google/uuid"

	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

// Placeholder the provider replaces with the real session id in redirect URLs.
const sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// SessionRequest describes a subscription checkout for one user.
type SessionRequest struct {
	PriceID    string
	PlanType   types.PlanType
	UserID     uuid.UUID
	Email      string
	CustomerID string
	SuccessURL string
	CancelURL  string
}

// Session is the hosted checkout created by the provider.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// WebhookEvent is a verified provider event reduced to what the app stores.
type WebhookEvent struct {
	ID   string
	Type string
	// Membership is nil for events that do not change a subscription.
	Membership *profile.MembershipUpdate
}

// Provider creates checkout sessions and verifies webhook deliveries.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error)
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}

// SuccessURL is where the provider sends the customer after paying.
func SuccessURL(siteURL string) string {
	return siteURL + "/checkout/success?session_id=" + sessionIDPlaceholder
}

// CancelURL is where the provider sends the customer after backing out.
func CancelURL(siteURL string) string {
	return siteURL + "/pricing?canceled=true&session_id=" + sessionIDPlaceholder
}
