package email

import (
	"context"
	"strings"
	"testing"
)

func TestMembershipActivatedEscapesName(t *testing.T) {
	req, err := MembershipActivated("ada@example.com", "<b>Ada</b>", "yearly", "https://courses.example.com/")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(req.HTML, "<b>Ada</b>") {
		t.Fatal("expected the name to be escaped")
	}
	if !strings.Contains(req.HTML, "https://courses.example.com/courses") {
		t.Fatalf("missing courses link in %q", req.HTML)
	}
	if len(req.To) != 1 || req.To[0] != "ada@example.com" {
		t.Fatalf("unexpected recipients %v", req.To)
	}
}

func TestNoopSenderRecords(t *testing.T) {
	sender := NewNoopSender()
	if err := SendMembershipActivated(context.Background(), sender, "a@example.com", "", "monthly", "http://localhost:3000"); err != nil {
		t.Fatalf("send: %v", err)
	}
	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one recorded email, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Text, "Hello there") {
		t.Fatalf("expected fallback greeting, got %q", sent[0].Text)
	}
}

func TestNewSenderFallsBackToNoop(t *testing.T) {
	if _, ok := NewSender("", "noreply@example.com").(*NoopSender); !ok {
		t.Fatal("expected noop sender without an api key")
	}
}
