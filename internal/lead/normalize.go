package lead

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Column limits for offplan_leads.
const (
	maxName          = 150
	maxCountry       = 150
	maxEmail         = 190
	maxPhone         = 64
	maxPropertyTitle = 190
	maxIPAddress     = 100
	maxUserAgent     = 500
)

var (
	phoneExtension  = regexp.MustCompile(`(?i)\s*(?:ext\.?|x)\s*\d*\s*$`)
	phoneDisallowed = regexp.MustCompile(`[^0-9+()\- ]`)
	absoluteURL     = regexp.MustCompile(`(?i)^https?://`)
)

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// NormalizeEmail trims, lowercases and truncates an address.
func NormalizeEmail(s string) string {
	return Truncate(strings.ToLower(strings.TrimSpace(s)), maxEmail)
}

// NormalizePhone drops a trailing extension, strips everything outside
// digits, spaces and +()- then truncates.
func NormalizePhone(s string) string {
	s = phoneExtension.ReplaceAllString(strings.TrimSpace(s), "")
	s = phoneDisallowed.ReplaceAllString(s, "")
	return Truncate(strings.TrimSpace(s), maxPhone)
}

// NormalizeBrochureURL converts backslashes, keeps absolute and
// protocol-relative URLs as they are, and roots everything else.
func NormalizeBrochureURL(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\`, "/"))
	if s == "" {
		return ""
	}
	if absoluteURL.MatchString(s) || strings.HasPrefix(s, "//") {
		return s
	}
	return "/" + strings.TrimLeft(s, "/")
}

// SafeRedirect returns target when it is a root-relative path on this site
// and "/" otherwise. A bare relative path is rooted.
func SafeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || strings.ContainsAny(target, "\r\n") {
		return "/"
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, `\`) || strings.HasPrefix(target, `/\`) {
		return "/"
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "/"
	}

	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return target
}

// RefererPath reduces a Referer header to its path and query so a failed
// submission can return the visitor to the page they came from.
func RefererPath(referer string) string {
	u, err := url.Parse(strings.TrimSpace(referer))
	if err != nil || u.Path == "" {
		return ""
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
