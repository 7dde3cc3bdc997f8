package main

import (
	"testing"
	"time"

	"github.com/joergschultzelutter/mpad/config"
)

func TestToSetLowercasesAndDeduplicatesLookups(t *testing.T) {
	set := toSet([]string{"Restaurant", "restaurant", "Cafe"})

	if _, ok := set["restaurant"]; !ok {
		t.Fatalf("expected lowercased key present")
	}
	if _, ok := set["cafe"]; !ok {
		t.Fatalf("expected lowercased key present")
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", len(set))
	}
}

func TestToSetEmptyInput(t *testing.T) {
	if set := toSet(nil); len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}

func TestMailClientOrNilDisabledWithoutHost(t *testing.T) {
	cfg := config.Default()
	if client := mailClientOrNil(cfg); client != nil {
		t.Fatalf("expected nil client when mail.smtp_host is unset")
	}
}

func TestMailClientOrNilEnabledWithHost(t *testing.T) {
	cfg := config.Default()
	cfg.Mail.SMTPHost = "smtp.example.net"
	cfg.Mail.SentRetention = 24 * time.Hour

	if client := mailClientOrNil(cfg); client == nil {
		t.Fatalf("expected non-nil client when mail.smtp_host is set")
	}
}
