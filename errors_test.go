package linkedintoken

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name    string
		message string
		code    string
		want    string
	}{
		{
			name:    "message and code",
			message: "Invalid access token.",
			code:    "401",
			want:    "provider_error: Invalid access token. (code 401)",
		},
		{
			name:    "message only",
			message: "Internal service error",
			want:    "provider_error: Internal service error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &APIError{Message: tt.message, Code: tt.code}
			if got := e.Error(); got != tt.want {
				t.Errorf("APIError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &FetchError{Err: cause}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is() did not match the wrapped cause")
	}
	want := "failed to fetch user profile: connection refused"
	if err.Error() != want {
		t.Errorf("FetchError.Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("authenticate: %w", err)
	var fetchErr *FetchError
	if !errors.As(wrapped, &fetchErr) {
		t.Errorf("errors.As() did not find *FetchError in chain")
	}
}

func TestRateLimitError_Error(t *testing.T) {
	err := &RateLimitError{Identifier: "203.0.113.9"}
	want := "rate_limit_exceeded: too many profile requests"
	if err.Error() != want {
		t.Errorf("RateLimitError.Error() = %q, want %q", err.Error(), want)
	}
}
