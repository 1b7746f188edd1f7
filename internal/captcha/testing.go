package captcha

import "net/http"

// SetTestClients overrides the verify URL and HTTP clients on a verifier.
// This should only be used in tests. Nil clients keep the current value.
func SetTestClients(v *Verifier, verifyURL string, primary, fallback *http.Client) {
	if verifyURL != "" {
		v.verifyURL = verifyURL
	}
	if primary != nil {
		v.primary = primary
	}
	if fallback != nil {
		v.fallback = fallback
	}
}
