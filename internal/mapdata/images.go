package mapdata

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	// UploadsBasePath is where listing images live relative to the site root.
	UploadsBasePath = "admin/assets/uploads/properties/"
	// legacyUploadsPrefix is the pre-admin location of the same files.
	legacyUploadsPrefix = "assets/uploads/properties/"
)

var repeatedSlashes = regexp.MustCompile(`/+`)

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "//")
}

// NormalizeImagePath maps a stored image path onto the uploads base.
// Remote URLs pass through; "" means no image.
func NormalizeImagePath(path string) string {
	path = strings.TrimSpace(strings.ReplaceAll(path, `\`, "/"))
	if path == "" {
		return ""
	}
	if isRemote(path) {
		return path
	}

	path = strings.TrimLeft(path, "/")
	switch {
	case strings.HasPrefix(path, UploadsBasePath):
		return path
	case strings.HasPrefix(path, legacyUploadsPrefix):
		return UploadsBasePath + strings.TrimPrefix(path, legacyUploadsPrefix)
	default:
		return UploadsBasePath + path
	}
}

// FormatImageURL roots a normalized path and collapses duplicate slashes.
func FormatImageURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if isRemote(path) {
		return path
	}
	return repeatedSlashes.ReplaceAllString("/"+strings.TrimLeft(path, "/"), "/")
}

// DecodeGallery reads a gallery_images value: a JSON list of paths, or a
// list of objects from which the first non-empty string field is taken.
// Malformed input yields no images.
func DecodeGallery(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	open, ok := tok.(json.Delim)
	if !ok || (open != '[' && open != '{') {
		return nil
	}

	var out []string
	for dec.More() {
		if open == '{' {
			// Top-level object: skip the key, keep the value.
			if _, err := dec.Token(); err != nil {
				return nil
			}
		}
		candidate, err := firstString(dec)
		if err != nil {
			return nil
		}
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil
	}

	return out
}

// firstString consumes one JSON value and returns it if it is a non-empty
// string, or the first non-empty string directly inside it if it is an
// object or array.
func firstString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}

	switch t := tok.(type) {
	case string:
		return t, nil
	case json.Delim:
		isObject := t == '{'
		var found string
		for dec.More() {
			if isObject {
				if _, err := dec.Token(); err != nil {
					return "", err
				}
			}
			var v interface{}
			if err := dec.Decode(&v); err != nil {
				return "", err
			}
			if s, ok := v.(string); ok && s != "" && found == "" {
				found = s
			}
		}
		if _, err := dec.Token(); err != nil {
			return "", err
		}
		return found, nil
	default:
		return "", nil
	}
}

// DetailsURL appends the listing id to a details page path.
func DetailsURL(base string, id int64) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "#"
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "id=" + strconv.FormatInt(id, 10)
}
