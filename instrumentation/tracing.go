package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys.
//
// SECURITY WARNING: never record actual access or refresh token values in
// traces or metrics. Traces are persisted, replicated, and visible to wider
// audiences than the serving path. Only metadata such as token presence,
// outcome, and provider status codes is safe to record.
const (
	// Strategy attributes
	AttrOutcome      = "auth.outcome"       // Terminal outcome (success, fail, error)
	AttrTokenPresent = "auth.token_present" //nolint:gosec // Boolean flag, NOT the token value
	AttrTokenField   = "auth.token_field"   //nolint:gosec // Configured parameter name, non-secret

	// Provider attributes
	AttrProviderName      = "provider.name"
	AttrProviderOperation = "provider.operation"
	AttrProviderStatus    = "provider.status"
	AttrProviderErrorType = "provider.error_type"

	// Security attributes
	AttrRateLimited = "security.rate_limited"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOutcome sets the terminal outcome attribute and span status (nil-safe).
// A "fail" outcome is a caller mistake, not a system fault, so the span status
// stays OK; only "error" outcomes mark the span as errored.
func SetSpanOutcome(span trace.Span, outcome string) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
	if outcome != "error" {
		span.SetStatus(codes.Ok, "")
	}
}
