package linkedintoken

import "fmt"

// Error codes reported on the host middleware error channel
const (
	ErrorCodeProviderError     = "provider_error"
	ErrorCodeFetchFailed       = "fetch_failed"
	ErrorCodeRateLimitExceeded = "rate_limit_exceeded"
)

// APIError represents a structured error envelope returned by the LinkedIn API.
// Code carries the provider-assigned error code verbatim; it is not an HTTP
// status code.
type APIError struct {
	Message string // Human-readable error message from the provider
	Code    string // Provider-assigned error code
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", ErrorCodeProviderError, e.Message)
	}
	return fmt.Sprintf("%s: %s (code %s)", ErrorCodeProviderError, e.Message, e.Code)
}

// FetchError wraps a transport-level or provider-level failure whose payload
// could not be interpreted as a structured API error envelope.
type FetchError struct {
	Err error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Err == nil {
		return "failed to fetch user profile"
	}
	return "failed to fetch user profile: " + e.Err.Error()
}

// Unwrap returns the underlying cause
func (e *FetchError) Unwrap() error {
	return e.Err
}

// RateLimitError is reported when the strategy's provider-call rate limit
// rejects an authentication attempt before the profile fetch.
type RateLimitError struct {
	Identifier string // Caller identifier that exceeded the limit (client IP)
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return ErrorCodeRateLimitExceeded + ": too many profile requests"
}
