package auth

import (
	"net/http"
	"strings"
)

// BearerPrefix is the literal scheme prefix in the Authorization header.
// Matching is case-sensitive with exactly one space, per RFC 6750's
// common usage.
const BearerPrefix = "Bearer "

// BearerToken extracts a candidate token from an Authorization header
// value. Any other header shape (empty value, different scheme, a bare
// "Bearer" with nothing after it) yields ("", false): no candidate, not
// an error.
func BearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, BearerPrefix)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// BearerFromRequest extracts a candidate token from the request's
// Authorization header.
func BearerFromRequest(r *http.Request) (string, bool) {
	return BearerToken(r.Header.Get("Authorization"))
}
