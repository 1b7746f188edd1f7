// Package mapdata turns listing rows into map markers for the front-end map.
package mapdata

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// coordinatePatterns match the ways Google Maps links carry a position,
// tried in order against the URL-decoded value.
var coordinatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`!3d(-?\d+\.\d+)!4d(-?\d+\.\d+)`),
	regexp.MustCompile(`q=(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`%40(-?\d+\.\d+)%2C(-?\d+\.\d+)`),
}

var (
	commaSplit   = regexp.MustCompile(`\s*,\s*`)
	decimalFloat = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	iframeSrc    = regexp.MustCompile(`(?i)src\s*=\s*["']([^"']+)["']`)
	googleHost   = regexp.MustCompile(`(^|\.)google\.[a-z.]+$`)
	embedBaseURL = "https://www.google.com/maps"
)

// ExtractCoordinates pulls a position out of a free-text location_map
// value: a Google Maps share or embed link, or a plain "lat,lng" pair.
func ExtractCoordinates(value string) *Coordinates {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	decoded, err := url.QueryUnescape(value)
	if err != nil {
		decoded = value
	}

	for _, re := range coordinatePatterns {
		m := re.FindStringSubmatch(decoded)
		if m == nil {
			continue
		}
		if c := parsePair(m[1], m[2]); c != nil {
			return c
		}
	}

	parts := commaSplit.Split(strings.TrimSpace(decoded), -1)
	if len(parts) != 2 {
		return nil
	}
	return parsePair(parts[0], parts[1])
}

// parsePair parses a finite latitude and longitude written as decimal
// numbers. Hex floats, inf and nan are rejected.
func parsePair(latText, lngText string) *Coordinates {
	lat, ok := parseDecimal(latText)
	if !ok {
		return nil
	}
	lng, ok := parseDecimal(lngText)
	if !ok {
		return nil
	}
	return &Coordinates{Lat: lat, Lng: lng}
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !decimalFloat.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// EmbedURL returns an iframe-ready map URL. A Google embed link found in
// mapValue (bare or inside an <iframe> snippet) wins; otherwise one is
// synthesized from coords, then from location. It returns nil when there
// is nothing to point at.
func EmbedURL(mapValue, location string, coords *Coordinates) *string {
	if u := embeddableURL(mapValue); u != "" {
		return &u
	}

	if coords != nil {
		u := fmt.Sprintf("%s?q=%.6f,%.6f&z=15&output=embed", embedBaseURL, coords.Lat, coords.Lng)
		return &u
	}

	if location != "" {
		q := strings.ReplaceAll(url.QueryEscape(location), "+", "%20")
		u := embedBaseURL + "?q=" + q + "&output=embed"
		return &u
	}

	return nil
}

// embeddableURL returns the Google-hosted embed URL carried by value, or "".
func embeddableURL(value string) string {
	candidate := strings.TrimSpace(html.UnescapeString(value))
	if candidate == "" {
		return ""
	}

	if strings.Contains(strings.ToLower(candidate), "<iframe") {
		m := iframeSrc.FindStringSubmatch(candidate)
		if m == nil {
			return ""
		}
		candidate = strings.TrimSpace(html.UnescapeString(m[1]))
	}

	if strings.HasPrefix(candidate, "http://") {
		candidate = "https://" + strings.TrimPrefix(candidate, "http://")
	}
	switch {
	case strings.HasPrefix(candidate, "https://"):
	case strings.HasPrefix(candidate, "//"):
		candidate = "https:" + candidate
	default:
		return ""
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return ""
	}
	if !googleHost.MatchString(strings.ToLower(u.Hostname())) {
		return ""
	}
	if !strings.Contains(candidate, "/maps/embed") && !strings.Contains(candidate, "output=embed") {
		return ""
	}

	return candidate
}
