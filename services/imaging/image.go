// Package imaging normalizes the base64 image strings sent by advisory clients.
// Clients may send raw base64 or a data URL ("data:image/png;base64,...").
package imaging

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMIME is assumed when neither the data URL nor the bytes say otherwise
const DefaultMIME = "image/jpeg"

const marker = "base64,"

// RawBase64 strips everything up to and including the data-URL marker
func RawBase64(s string) string {
	if i := strings.Index(s, marker); i >= 0 {
		return s[i+len(marker):]
	}
	return s
}

// DataURL returns s as a data URL, assuming JPEG when s is raw base64
func DataURL(s string) string {
	if strings.Contains(s, marker) {
		return s
	}
	return "data:" + DefaultMIME + ";base64," + s
}

// Decode returns the image bytes of a raw or data-URL base64 string
func Decode(s string) ([]byte, error) {
	raw := strings.TrimSpace(RawBase64(s))
	if raw == "" {
		return nil, fmt.Errorf("empty image data")
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawStdEncoding.DecodeString(raw); rawErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("failed to decode image: %w", err)
}

// DetectMIME sniffs the image type from its bytes, then from the data-URL header.
// Falls back to DefaultMIME.
func DetectMIME(s string) string {
	if data, err := Decode(s); err == nil {
		if mt := mimetype.Detect(data); strings.HasPrefix(mt.String(), "image/") {
			return mt.String()
		}
	}
	if declared, ok := declaredMIME(s); ok {
		return declared
	}
	return DefaultMIME
}

// declaredMIME parses "data:<mime>;base64," headers
func declaredMIME(s string) (string, bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", false
	}
	end := strings.Index(s, ";")
	if end < 0 || end > strings.Index(s, marker) {
		return "", false
	}
	mime := s[len("data:"):end]
	if !strings.HasPrefix(mime, "image/") {
		return "", false
	}
	return mime, true
}
