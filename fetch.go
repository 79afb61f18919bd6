package linkedintoken

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/oauthkit/linkedin-token/instrumentation"
	"github.com/oauthkit/linkedin-token/profile"
)

// maxProfileBodySize bounds how much of a provider response is read.
// Real profile documents are a few kilobytes.
const maxProfileBodySize = 1 << 20

// fetchProfile performs the single authorized GET against the profile
// endpoint built at construction. The access token travels as a bearer
// credential via the x/oauth2 transport, never as a URL parameter.
//
// A 2xx response returns the body verbatim for normalization; interpreting it
// is the normalizer's job, so a non-JSON 2xx body is not a fetch error. Any
// other status is converted into a *APIError when the payload carries the
// provider's error envelope, or a *FetchError otherwise.
func (s *Strategy) fetchProfile(ctx context.Context, accessToken string) ([]byte, error) {
	ctx, cancel := s.ensureContextTimeout(ctx)
	defer cancel()

	var span trace.Span
	if s.inst != nil {
		ctx, span = s.inst.Tracer("provider").Start(ctx, "linkedin.fetch_profile",
			trace.WithAttributes(
				attribute.String(instrumentation.AttrProviderName, profile.ProviderName),
				attribute.String(instrumentation.AttrProviderOperation, "profile"),
			))
		defer span.End()
	}

	// The oauth2 transport injects the Authorization: Bearer header and
	// reuses s.httpClient underneath.
	httpCtx := context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	client := oauth2.NewClient(httpCtx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		s.recordProviderCall(ctx, span, 0, start, err)
		return nil, &FetchError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBodySize))
	if err != nil {
		s.recordProviderCall(ctx, span, resp.StatusCode, start, err)
		return nil, &FetchError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := providerError(body, resp.StatusCode)
		s.recordProviderCall(ctx, span, resp.StatusCode, start, err)
		return nil, err
	}

	s.recordProviderCall(ctx, span, resp.StatusCode, start, nil)
	return body, nil
}

// providerError interprets a non-2xx payload. LinkedIn wraps failures in an
// {"error": {"message", "code"}} envelope; when present it is surfaced as a
// structured *APIError, otherwise the status code is wrapped generically.
func providerError(body []byte, statusCode int) error {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil &&
		(envelope.Error.Message != "" || envelope.Error.Code != "") {
		return &APIError{
			Message: envelope.Error.Message,
			Code:    envelope.Error.Code,
		}
	}

	return &FetchError{Err: fmt.Errorf("unexpected status %d", statusCode)}
}

// recordProviderCall emits the API call metrics and span attributes
func (s *Strategy) recordProviderCall(ctx context.Context, span trace.Span, statusCode int, start time.Time, err error) {
	if s.inst == nil {
		return
	}
	durationMs := float64(time.Since(start).Milliseconds())
	s.inst.Metrics().RecordProviderAPICall(ctx, "profile", statusCode, durationMs, err)
	if span != nil {
		span.SetAttributes(attribute.Int(instrumentation.AttrProviderStatus, statusCode))
	}
	instrumentation.RecordError(span, err)
}
