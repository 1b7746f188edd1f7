// Package captcha verifies reCAPTCHA tokens against the siteverify API.
package captcha

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is Google's siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var (
	// ErrNotConfigured is returned when no secret key is set.
	ErrNotConfigured = errors.New("recaptcha secret key is not configured")
	// ErrEmptyToken is returned when the form carried no response token.
	ErrEmptyToken = errors.New("recaptcha response token is empty")
	// ErrRejected is returned when the service answered success=false.
	ErrRejected = errors.New("recaptcha verification rejected")
)

// Verifier checks CAPTCHA tokens. A request that fails on the primary
// transport is retried once on a fresh HTTP/1.1 connection.
type Verifier struct {
	secret  string
	timeout time.Duration

	// Overridable for testing.
	verifyURL string
	primary   *http.Client
	fallback  *http.Client
}

// NewVerifier creates a verifier. An empty verifyURL selects DefaultVerifyURL.
func NewVerifier(secret, verifyURL string, timeout time.Duration) *Verifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Verifier{
		secret:    strings.TrimSpace(secret),
		timeout:   timeout,
		verifyURL: verifyURL,
		primary:   &http.Client{Timeout: timeout},
		fallback:  &http.Client{Timeout: timeout, Transport: fallbackTransport()},
	}
}

// fallbackTransport never reuses connections and never negotiates HTTP/2.
func fallbackTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DisableKeepAlives = true
	t.ForceAttemptHTTP2 = false
	t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	return t
}

// Configured reports whether a secret key is set.
func (v *Verifier) Configured() bool {
	return v != nil && v.secret != ""
}

// verifyResponse is the siteverify response body.
type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// Verify checks token for the client at remoteIP. It returns nil only when
// the service reported success.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Configured() {
		return ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	result, err := v.post(ctx, v.primary, form)
	if err != nil {
		slog.Warn("recaptcha primary transport failed, retrying", "error", err)
		result, err = v.post(ctx, v.fallback, form)
		if err != nil {
			return fmt.Errorf("verifying recaptcha: %w", err)
		}
	}

	if !result.Success {
		if len(result.ErrorCodes) > 0 {
			return fmt.Errorf("%w: %s", ErrRejected, strings.Join(result.ErrorCodes, ", "))
		}
		return ErrRejected
	}

	return nil
}

// post sends one verification attempt.
func (v *Verifier) post(ctx context.Context, client *http.Client, form url.Values) (result *verifyResponse, err error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &out, nil
}
