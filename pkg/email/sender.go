package email

import (
	"context"
	"time"
)

// SendRequest is a single outgoing email.
type SendRequest struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// SendResult reports a delivered (or queued) message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// NewSender returns a Resend sender when an API key is set and a no-op sender otherwise.
func NewSender(apiKey, from string) Sender {
	if apiKey == "" {
		return NewNoopSender()
	}
	return NewResendSender(apiKey, from)
}
