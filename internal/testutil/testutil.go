// Package testutil provides testing helpers shared by the linkedin-token
// strategy tests: canned provider responses, error envelopes, and small
// request inspection utilities.
package testutil

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
)

// SampleProfileBody is a representative LinkedIn profile document covering
// every field the normalizer maps.
const SampleProfileBody = `{"id":"abc123","formattedName":"Jordan Kim","lastName":"Kim","firstName":"Jordan","emailAddress":"jordan@example.com","pictureUrl":"https://media.licdn.com/p/abc123.jpg"}`

// ServeJSON returns a handler that answers every request with the given
// status and body.
func ServeJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// NewProviderServer starts a stub profile endpoint answering with the given
// status and body. The caller owns the returned server and must Close it.
func NewProviderServer(status int, body string) *httptest.Server {
	return httptest.NewServer(ServeJSON(status, body))
}

// ErrorEnvelope builds the provider error payload shape.
func ErrorEnvelope(message, code string) string {
	return fmt.Sprintf(`{"error":{"message":%q,"code":%q}}`, message, code)
}

// BearerToken extracts the bearer credential from a request's Authorization
// header, or "" when none is present.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}

// GenerateRandomString creates a random URL-safe string of the given byte
// length, useful for fake tokens.
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate random string: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length]
}
