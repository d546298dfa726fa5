package config

import (
	"fmt"
	"os"
	"strings"
)

// Flags is the feature-flag value built once at startup and passed to handlers.
// It is never mutated after construction.
type Flags struct {
	TestMode   bool            `json:"testMode"`
	Membership MembershipFlags `json:"membership"`
	Payments   PaymentFlags    `json:"payments"`
	Features   FeatureFlags    `json:"features"`
}

// MembershipFlags controls content gating.
type MembershipFlags struct {
	AllowAllAccess bool `json:"allowAllAccess"`
}

// PaymentFlags controls checkout availability.
type PaymentFlags struct {
	Enabled bool `json:"enabled"`
}

// FeatureFlags toggles optional surfaces.
type FeatureFlags struct {
	PreviewLessons bool `json:"previewLessons"`
	DebugEndpoints bool `json:"debugEndpoints"`
}

// TestDefaults returns the posture used while content is being prepared:
// paywalls are bypassed and payments are off.
func TestDefaults() Flags {
	return Flags{
		TestMode:   true,
		Membership: MembershipFlags{AllowAllAccess: true},
		Payments:   PaymentFlags{Enabled: false},
		Features:   FeatureFlags{PreviewLessons: true, DebugEndpoints: true},
	}
}

// ProductionDefaults returns the production posture: test mode off,
// membership enforced and payments on.
func ProductionDefaults() Flags {
	return Flags{
		TestMode:   false,
		Membership: MembershipFlags{AllowAllAccess: false},
		Payments:   PaymentFlags{Enabled: true},
		Features:   FeatureFlags{PreviewLessons: true, DebugEndpoints: false},
	}
}

// LoadFlags picks defaults from COURSEHUB_MODE ("test" or "production") and
// then applies per-flag overrides.
func LoadFlags() (Flags, error) {
	var flags Flags
	switch mode := strings.ToLower(strings.TrimSpace(getEnv("COURSEHUB_MODE", "test"))); mode {
	case "test", "development":
		flags = TestDefaults()
	case "production", "prod":
		flags = ProductionDefaults()
	default:
		return Flags{}, fmt.Errorf("invalid COURSEHUB_MODE %q: use test or production", mode)
	}

	overrides := []struct {
		key    string
		target *bool
	}{
		{"FLAG_TEST_MODE", &flags.TestMode},
		{"FLAG_ALLOW_ALL_ACCESS", &flags.Membership.AllowAllAccess},
		{"FLAG_PAYMENTS_ENABLED", &flags.Payments.Enabled},
		{"FLAG_PREVIEW_LESSONS", &flags.Features.PreviewLessons},
		{"FLAG_DEBUG_ENDPOINTS", &flags.Features.DebugEndpoints},
	}
	for _, override := range overrides {
		raw := os.Getenv(override.key)
		if raw == "" {
			continue
		}
		value, ok := parseBool(raw)
		if !ok {
			return Flags{}, fmt.Errorf("invalid boolean for %s: %q", override.key, raw)
		}
		*override.target = value
	}

	return flags, nil
}

// IsTestMode reports whether paywalls are globally bypassed.
func (f Flags) IsTestMode() bool {
	return f.TestMode
}

// HasFullAccess reports whether every caller may watch every lesson.
func (f Flags) HasFullAccess() bool {
	return f.TestMode || f.Membership.AllowAllAccess
}

// IsPaymentRequired reports whether checkout is live.
func (f Flags) IsPaymentRequired() bool {
	return !f.TestMode && f.Payments.Enabled
}
