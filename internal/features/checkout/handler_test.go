package checkout_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/coursehub-server-go/internal/features/checkout"
	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/internal/testutil"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

type fakeProvider struct {
	requests []checkout.SessionRequest
	err      error
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req checkout.SessionRequest) (checkout.Session, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return checkout.Session{}, f.err
	}
	return checkout.Session{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func (f *fakeProvider) ParseWebhook([]byte, string) (checkout.WebhookEvent, error) {
	return checkout.WebhookEvent{}, checkout.ErrInvalidSignature
}

func TestCreateSessionGates(t *testing.T) {
	t.Run("payments disabled", func(t *testing.T) {
		srv := testutil.NewServer(t, testutil.WithProvider(&fakeProvider{}))
		rec := srv.Do(t, http.MethodPost, "/api/stripe/create-checkout-session",
			map[string]string{"priceId": "price_monthly", "planType": "monthly"}, srv.UserToken(t, "buyer@example.com"))
		if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Payments are disabled") {
			t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("no provider", func(t *testing.T) {
		srv := testutil.NewServer(t, testutil.WithFlags(config.ProductionDefaults()))
		rec := srv.Do(t, http.MethodPost, "/api/stripe/create-checkout-session",
			map[string]string{"priceId": "price_monthly", "planType": "monthly"}, srv.UserToken(t, "buyer@example.com"))
		if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Stripe is not configured") {
			t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		srv := testutil.NewServer(t, testutil.WithFlags(config.ProductionDefaults()), testutil.WithProvider(&fakeProvider{}))
		rec := srv.Do(t, http.MethodPost, "/api/stripe/create-checkout-session",
			map[string]string{"priceId": "price_monthly", "planType": "monthly"}, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestCreateSession(t *testing.T) {
	provider := &fakeProvider{}
	srv := testutil.NewServer(t, testutil.WithFlags(config.ProductionDefaults()), testutil.WithProvider(provider))
	buyer := testutil.SeedProfile(t, srv.DB, "buyer@example.com", false)
	token := testutil.Token(t, buyer.ID, buyer.Email)

	cases := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"missing price", map[string]string{"planType": "monthly"}, http.StatusBadRequest},
		{"missing plan", map[string]string{"priceId": "price_monthly"}, http.StatusBadRequest},
		{"unknown plan", map[string]string{"priceId": "price_monthly", "planType": "weekly"}, http.StatusBadRequest},
		{"unconfigured price", map[string]string{"priceId": "price_other", "planType": "monthly"}, http.StatusBadRequest},
		{"price of another plan", map[string]string{"priceId": "price_yearly", "planType": "monthly"}, http.StatusBadRequest},
		{"ok", map[string]string{"priceId": "price_yearly", "planType": "Yearly"}, http.StatusOK},
	}
	for _, tc := range cases {
		rec := srv.Do(t, http.MethodPost, "/api/stripe/create-checkout-session", tc.body, token)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.status, rec.Code, rec.Body.String())
		}
	}

	if len(provider.requests) != 1 {
		t.Fatalf("expected one provider call, got %d", len(provider.requests))
	}
	req := provider.requests[0]
	if req.UserID != buyer.ID || req.Email != buyer.Email || req.PlanType != types.PlanYearly || req.PriceID != "price_yearly" {
		t.Fatalf("unexpected session request %+v", req)
	}
	if !strings.HasPrefix(req.SuccessURL, "http://localhost:3000/checkout/success") || !strings.Contains(req.SuccessURL, "{CHECKOUT_SESSION_ID}") {
		t.Fatalf("unexpected success url %q", req.SuccessURL)
	}

	rec := srv.Do(t, http.MethodPost, "/api/stripe/create-checkout-session",
		map[string]string{"priceId": "price_other", "planType": "monthly"}, token)
	if !strings.Contains(rec.Body.String(), "priceId does not match the configured plan") {
		t.Fatalf("unexpected mismatch message: %s", rec.Body.String())
	}

	provider.err = &checkout.ProviderError{Message: "No such price: 'price_monthly'", Err: errors.New("resource_missing")}
	rec = srv.Do(t, http.MethodPost, "/api/stripe/create-checkout-session",
		map[string]string{"priceId": "price_monthly", "planType": "monthly"}, token)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "No such price") {
		t.Fatalf("provider message not surfaced: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateSessionResponseShape(t *testing.T) {
	srv := testutil.NewServer(t, testutil.WithFlags(config.ProductionDefaults()), testutil.WithProvider(&fakeProvider{}))
	rec := srv.Do(t, http.MethodPost, "/api/stripe/create-checkout-session",
		map[string]string{"priceId": "price_monthly", "planType": "monthly"}, srv.UserToken(t, "buyer@example.com"))

	var body struct {
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
	}
	testutil.Decode(t, rec, &body)
	if body.SessionID != "cs_test_1" || body.URL == "" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestPlans(t *testing.T) {
	srv := testutil.NewServer(t)
	rec := srv.Do(t, http.MethodGet, "/api/stripe/plans", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Plans           []config.Plan `json:"plans"`
		PaymentRequired bool          `json:"paymentRequired"`
	}
	testutil.Decode(t, rec, &body)
	if len(body.Plans) != 2 || body.PaymentRequired {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func signedWebhook(t *testing.T, srv *testutil.Server, payload string, secret string) *httptest.ResponseRecorder {
	t.Helper()
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "." + payload))
	signature := fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	srv.Engine.ServeHTTP(rec, req)
	return rec
}

func checkoutCompleted(userID uuid.UUID) string {
	return fmt.Sprintf(`{
		"id": "evt_checkout",
		"object": "event",
		"api_version": "2023-10-16",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"client_reference_id": %q,
			"customer": "cus_123",
			"metadata": {"user_id": %q, "plan_type": "monthly"}
		}}
	}`, userID, userID)
}

func TestWebhookActivatesMembership(t *testing.T) {
	provider := checkout.NewStripeProvider("sk_test_123", testutil.WebhookSecret)
	srv := testutil.NewServer(t, testutil.WithFlags(config.ProductionDefaults()), testutil.WithProvider(provider))
	buyer := testutil.SeedProfile(t, srv.DB, "buyer@example.com", false)

	rec := signedWebhook(t, srv, checkoutCompleted(buyer.ID), "whsec_wrong")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid signature") {
		t.Fatalf("expected signature rejection, got %d: %s", rec.Code, rec.Body.String())
	}

	for i := 0; i < 2; i++ {
		rec = signedWebhook(t, srv, checkoutCompleted(buyer.ID), testutil.WebhookSecret)
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	p, err := profile.Get(srv.DB, buyer.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.SubscriptionStatus != types.SubscriptionStatusActive {
		t.Fatalf("unexpected status %q", p.SubscriptionStatus)
	}
	if p.PlanType == nil || *p.PlanType != types.PlanMonthly {
		t.Fatalf("unexpected plan %v", p.PlanType)
	}
	if p.StripeCustomerID == nil || *p.StripeCustomerID != "cus_123" {
		t.Fatalf("unexpected customer %v", p.StripeCustomerID)
	}

	// Redelivery of the same event must not send a second welcome email.
	sent := srv.Sender.Sent()
	if len(sent) != 1 || sent[0].To[0] != "buyer@example.com" {
		t.Fatalf("expected one activation email, got %+v", sent)
	}

	deleted := `{
		"id": "evt_deleted",
		"object": "event",
		"api_version": "2023-10-16",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "object": "subscription", "status": "canceled", "customer": "cus_123"}}
	}`
	rec = signedWebhook(t, srv, deleted, testutil.WebhookSecret)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	p, _ = profile.Get(srv.DB, buyer.ID)
	if p.SubscriptionStatus != types.SubscriptionStatusCanceled {
		t.Fatalf("expected canceled, got %q", p.SubscriptionStatus)
	}
}

func TestWebhookUnknownProfileIsAcknowledged(t *testing.T) {
	provider := checkout.NewStripeProvider("sk_test_123", testutil.WebhookSecret)
	srv := testutil.NewServer(t, testutil.WithFlags(config.ProductionDefaults()), testutil.WithProvider(provider))

	rec := signedWebhook(t, srv, checkoutCompleted(uuid.New()), testutil.WebhookSecret)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := testutil.CountRows(t, srv.DB, "profiles"); n != 0 {
		t.Fatalf("webhook must not create profiles, found %d", n)
	}
	if len(srv.Sender.Sent()) != 0 {
		t.Fatal("no email expected for an unknown profile")
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	provider := checkout.NewStripeProvider("sk_test_123", testutil.WebhookSecret)
	srv := testutil.NewServer(t, testutil.WithProvider(provider))

	payload := `{"id": "evt_other", "object": "event", "api_version": "2023-10-16", "type": "invoice.paid", "data": {"object": {"id": "in_1", "object": "invoice"}}}`
	rec := signedWebhook(t, srv, payload, testutil.WebhookSecret)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}
