package linkedintoken

import (
	"context"
	"net/http"

	"github.com/oauthkit/linkedin-token/profile"
)

// Credentials is the transient token pair extracted from one inbound request.
// RefreshToken is optional and passed through to the verification callback
// unused; this strategy never refreshes tokens itself.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Info carries diagnostic context across the responder channels, for example
// the reason a verification callback declined a user.
type Info struct {
	Message string `json:"message,omitempty"`
}

// Responder is the contract the host authentication middleware supplies for
// reporting the terminal outcome of one authentication attempt. Exactly one
// method is invoked per attempt. The strategy never writes an HTTP response;
// response generation belongs to the middleware.
type Responder interface {
	// Success reports an authenticated user.
	Success(user any, info Info)

	// Fail reports a recoverable caller mistake: a missing access token or a
	// verification callback that declined the user. The caller may retry with
	// corrected input.
	Fail(info Info)

	// Error reports a provider, transport, or application fault.
	Error(err error)
}

// VerifyFunc is the application verification callback. It receives the
// extracted credentials and the normalized profile and decides the outcome:
// returning a non-nil error reports a fault, returning a nil user declines
// the authentication (info explains why), and returning a user completes it.
type VerifyFunc func(ctx context.Context, creds Credentials, p *profile.Profile) (user any, info Info, err error)

// VerifyRequestFunc is the request-aware variant of VerifyFunc, selected by
// constructing the strategy with NewWithRequest. The inbound request is passed
// through untouched for callbacks that need headers or connection state.
type VerifyRequestFunc func(ctx context.Context, r *http.Request, creds Credentials, p *profile.Profile) (user any, info Info, err error)
