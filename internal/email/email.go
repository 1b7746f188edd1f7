// Package email formats lead notifications and sends them over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/houzzhunt/hh/internal/lead"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

// FormatLeadEmail builds the subject and plain-text body announcing l.
func FormatLeadEmail(l *lead.Lead, baseURL string) (subject, body string) {
	subject = fmt.Sprintf("New %s from %s", l.Type.Label(), oneLine(l.Name))
	if title := l.DisplayTitle(); title != "" {
		subject += " - " + oneLine(title)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "A new %s was received.\n\n", strings.ToLower(l.Type.Label()))
	fmt.Fprintf(&buf, "Name:     %s\n", l.Name)
	fmt.Fprintf(&buf, "Email:    %s\n", l.Email)
	fmt.Fprintf(&buf, "Phone:    %s\n", l.Phone)
	fmt.Fprintf(&buf, "Country:  %s\n", l.Country)
	if title := l.DisplayTitle(); title != "" {
		fmt.Fprintf(&buf, "Property: %s\n", title)
	}
	if l.BrochureURL != "" {
		fmt.Fprintf(&buf, "Brochure: %s\n", absoluteURL(l.BrochureURL, baseURL))
	}
	if !l.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "Received: %s\n", l.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	if l.IPAddress != "" {
		fmt.Fprintf(&buf, "IP:       %s\n", l.IPAddress)
	}

	return subject, buf.String()
}

// LeadNotifier emails every stored lead to a fixed list of recipients.
type LeadNotifier struct {
	cfg     SMTPConfig
	to      []string
	baseURL string

	send func(cfg SMTPConfig, to []string, subject, body string) error
}

// NewLeadNotifier creates a notifier. It returns nil when SMTP or the
// recipient list is not configured, which disables notifications.
func NewLeadNotifier(cfg SMTPConfig, to []string, baseURL string) *LeadNotifier {
	if !cfg.IsConfigured() || len(to) == 0 {
		return nil
	}
	return &LeadNotifier{cfg: cfg, to: to, baseURL: baseURL, send: Send}
}

// NotifyLead implements lead.Notifier.
func (n *LeadNotifier) NotifyLead(ctx context.Context, l *lead.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, body := FormatLeadEmail(l, n.baseURL)
	if err := n.send(n.cfg, n.to, subject, body); err != nil {
		return fmt.Errorf("notifying lead %d: %w", l.ID, err)
	}
	return nil
}

// absoluteURL prefixes a root-relative path with baseURL.
func absoluteURL(path, baseURL string) string {
	if baseURL == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + path
}

// oneLine keeps header values on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Send sends an email via SMTP.
// Supports both port 465 (implicit TLS) and port 587 (STARTTLS).
func Send(cfg SMTPConfig, to []string, subject, body string) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		cfg.From,
		strings.Join(to, ", "),
		mime.QEncoding.Encode("utf-8", oneLine(subject)),
		body,
	)

	addr := cfg.Host + ":" + cfg.Port

	if cfg.Port == "465" {
		return sendImplicitTLS(cfg, addr, to, msg)
	}
	return sendSTARTTLS(cfg, addr, to, msg)
}

// sendImplicitTLS connects over TLS directly (port 465/SMTPS).
func sendImplicitTLS(cfg SMTPConfig, addr string, to []string, msg string) error {
	tlsCfg := &tls.Config{ServerName: cfg.Host}
	conn, err := tls.Dial("tcp", addr, tlsCfg)
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil {
			err = fmt.Errorf("quit: %w", quitErr)
		}
	}()

	if cfg.User != "" {
		auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return nil
}

// sendSTARTTLS connects plain then upgrades to TLS (port 587).
func sendSTARTTLS(cfg SMTPConfig, addr string, to []string, msg string) error {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
