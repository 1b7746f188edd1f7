package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/houzzhunt/hh/internal/lead"
)

func TestFormatLeadEmail(t *testing.T) {
	l := &lead.Lead{
		ID:            4,
		Type:          lead.TypeBrochure,
		PropertyID:    12,
		PropertyTitle: "Marina Vista",
		Name:          "Ana\r\nBcc: victim@example.com",
		Email:         "ana@example.com",
		Phone:         "+971 50 123 4567",
		Country:       "UAE",
		BrochureURL:   "/admin/assets/uploads/b.pdf",
		IPAddress:     "203.0.113.9",
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}

	subject, body := FormatLeadEmail(l, "https://houzzhunt.example/")

	if strings.ContainsAny(subject, "\r\n") {
		t.Errorf("subject spans lines: %q", subject)
	}
	if !strings.HasPrefix(subject, "New Brochure Download from Ana") {
		t.Errorf("subject = %q", subject)
	}
	if !strings.HasSuffix(subject, " - Marina Vista") {
		t.Errorf("subject should name the property: %q", subject)
	}

	for _, want := range []string{
		"A new brochure download was received.",
		"Email:    ana@example.com",
		"Phone:    +971 50 123 4567",
		"Property: Marina Vista",
		"Brochure: https://houzzhunt.example/admin/assets/uploads/b.pdf",
		"Received: 2026-01-02 03:04 UTC",
		"IP:       203.0.113.9",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\n%s", want, body)
		}
	}
}

func TestFormatLeadEmailPopup(t *testing.T) {
	subject, body := FormatLeadEmail(&lead.Lead{
		Type:       lead.TypePopup,
		PropertyID: 9,
		Name:       "Omar",
	}, "")

	if subject != "New Popup Enquiry from Omar - Property #9" {
		t.Errorf("subject = %q", subject)
	}
	if strings.Contains(body, "Brochure:") {
		t.Error("popup lead should not list a brochure")
	}
	if !strings.Contains(body, "Property: Property #9") {
		t.Error("expected property id fallback")
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		path, base, want string
	}{
		{"/b.pdf", "https://site.example", "https://site.example/b.pdf"},
		{"/b.pdf", "", "/b.pdf"},
		{"https://cdn.example/b.pdf", "https://site.example", "https://cdn.example/b.pdf"},
		{"//cdn.example/b.pdf", "https://site.example", "//cdn.example/b.pdf"},
	}

	for _, tt := range tests {
		if got := absoluteURL(tt.path, tt.base); got != tt.want {
			t.Errorf("absoluteURL(%q, %q) = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}

func TestNewLeadNotifier(t *testing.T) {
	cfg := SMTPConfig{Host: "smtp.example.com", Port: "587", From: "site@example.com"}

	if NewLeadNotifier(SMTPConfig{}, []string{"sales@example.com"}, "") != nil {
		t.Error("expected nil notifier without SMTP")
	}
	if NewLeadNotifier(cfg, nil, "") != nil {
		t.Error("expected nil notifier without recipients")
	}
	if NewLeadNotifier(cfg, []string{"sales@example.com"}, "") == nil {
		t.Error("expected notifier")
	}
}

func TestNotifyLead(t *testing.T) {
	n := NewLeadNotifier(
		SMTPConfig{Host: "smtp.example.com", Port: "587", From: "site@example.com"},
		[]string{"sales@example.com"}, "",
	)

	var gotTo []string
	var gotSubject string
	n.send = func(_ SMTPConfig, to []string, subject, _ string) error {
		gotTo, gotSubject = to, subject
		return nil
	}

	if err := n.NotifyLead(context.Background(), &lead.Lead{ID: 1, Type: lead.TypePopup, Name: "Ana"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(gotTo) != 1 || gotTo[0] != "sales@example.com" {
		t.Errorf("to = %v", gotTo)
	}
	if gotSubject != "New Popup Enquiry from Ana" {
		t.Errorf("subject = %q", gotSubject)
	}

	n.send = func(SMTPConfig, []string, string, string) error { return errors.New("connection refused") }
	if err := n.NotifyLead(context.Background(), &lead.Lead{ID: 2}); err == nil {
		t.Error("expected send error")
	}
}

func TestSendNotConfigured(t *testing.T) {
	if err := Send(SMTPConfig{}, []string{"a@example.com"}, "s", "b"); err == nil {
		t.Error("expected error for unconfigured SMTP")
	}
}

func TestSMTPConfigIsConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  SMTPConfig
		want bool
	}{
		{"fully configured", SMTPConfig{Host: "smtp.example.com", Port: "587", From: "test@example.com"}, true},
		{"missing host", SMTPConfig{From: "test@example.com"}, false},
		{"missing from", SMTPConfig{Host: "smtp.example.com"}, false},
		{"empty", SMTPConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}
