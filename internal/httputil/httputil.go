// Package httputil holds the HTTP status and media type rules of OpenAPI
// response maps and content maps.
package httputil

import (
	"mime"
	"strconv"
	"strings"
)

// Status code bounds of an OpenAPI response key.
const (
	MinStatusCode = 100
	MaxStatusCode = 599

	// DefaultResponse is the response key used when nothing else matches
	DefaultResponse = "default"
)

// ResponseKeys returns the response map keys that can describe status, in
// lookup order: the exact code, the range ("2XX" and "2xx"), then default.
func ResponseKeys(status int) []string {
	rng := strconv.Itoa(status/100) + "XX"
	return []string{strconv.Itoa(status), rng, strings.ToLower(rng), DefaultResponse}
}

// IsResponseKey reports whether code can be used as a response map key:
// "default", a range 1XX to 5XX, or a code between 100 and 599. Extension
// keys ("x-...") are accepted too.
func IsResponseKey(code string) bool {
	if code == DefaultResponse || strings.HasPrefix(code, "x-") {
		return true
	}
	if len(code) != 3 {
		return false
	}
	if strings.EqualFold(code[1:], "XX") {
		return code[0] >= '1' && code[0] <= '5'
	}
	n, err := strconv.Atoi(code)
	return err == nil && code[0] != '+' && code[0] != '-' && n >= MinStatusCode && n <= MaxStatusCode
}

// IsMediaRange reports whether mediaType is a usable content map key: a
// concrete type, "type/*" or "*/*". "*/subtype" is rejected.
func IsMediaRange(mediaType string) bool {
	if mediaType == "*/*" {
		return true
	}
	if typ, ok := strings.CutSuffix(mediaType, "/*"); ok {
		return typ != "" && typ != "*" && !strings.Contains(typ, "/")
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	// ParseMediaType accepts a bare type such as "application"
	typ, sub, ok := strings.Cut(mt, "/")
	return ok && typ != "" && sub != "" && typ != "*"
}
