package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestVerifyTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := GenerateAccessToken(id, "learner@example.com", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := VerifyToken(token, "secret")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	got, err := claims.UserID()
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}
	if claims.Email != "learner@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
}

func TestVerifyTokenFailures(t *testing.T) {
	id := uuid.New()

	expired, _ := GenerateAccessToken(id, "", "secret", -time.Minute)
	if _, err := VerifyToken(expired, "secret"); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	valid, _ := GenerateAccessToken(id, "", "secret", time.Minute)
	if _, err := VerifyToken(valid, "other"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := VerifyToken(valid, ""); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
	if _, err := VerifyToken("garbage", "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
