// Package stringutil holds the shape checks behind the string formats the
// contract validator understands.
package stringutil

import (
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsEmail reports whether s looks like an e-mail address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsUUID accepts only the 36 character hyphenated form; uuid.Parse on its
// own also takes the urn and braced spellings.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsURI reports whether s parses as a URI reference without characters that
// must be escaped.
func IsURI(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n<>\"{}|\\^`") {
		return false
	}
	_, err := url.Parse(s)
	return err == nil
}

// IsDate checks the RFC 3339 full-date form, YYYY-MM-DD.
func IsDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// IsDateTime checks an RFC 3339 timestamp.
func IsDateTime(s string) bool {
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

// IsIP reports whether s is an address of an allowed family.
func IsIP(s string, v4, v6 bool) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return false
	}
	return (v4 && addr.Is4()) || (v6 && addr.Is6())
}
