package checkout

import "errors"

var (
	ErrNotConfigured     = errors.New("stripe is not configured")
	ErrPaymentsDisabled  = errors.New("payments are disabled")
	ErrMissingFields     = errors.New("missing priceId or planType")
	ErrInvalidPlanType   = errors.New("planType must be monthly or yearly")
	ErrPriceMismatch     = errors.New("priceId does not match the configured plan")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrWebhookNotEnabled = errors.New("webhook secret is not configured")
)

// ProviderError carries the payment provider's own message.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }
