package linkedintoken

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oauthkit/linkedin-token/instrumentation"
)

const (
	defaultProfileURL        = "https://api.linkedin.com/v1/people/~"
	defaultAccessTokenField  = "oauth2_access_token"
	defaultRefreshTokenField = "refresh_token"

	// defaultRequestTimeout bounds provider calls when the caller's context
	// carries no deadline
	defaultRequestTimeout = 30 * time.Second
)

// defaultScope is requested when the caller configures none
var defaultScope = []string{"r_basicprofile"}

// Config holds the strategy configuration. All fields are read once at
// construction; the built Strategy is immutable and safe for concurrent use.
type Config struct {
	// ClientID is the LinkedIn application client ID (required).
	ClientID string

	// ClientSecret is the LinkedIn application client secret (required).
	ClientSecret string

	// AuthorizationURL overrides the LinkedIn authorization endpoint.
	// Defaults to the golang.org/x/oauth2/linkedin endpoint.
	AuthorizationURL string

	// TokenURL overrides the LinkedIn token endpoint.
	// Defaults to the golang.org/x/oauth2/linkedin endpoint.
	TokenURL string

	// Scope lists the permission scopes whose profile fields are requested
	// (defaults to ["r_basicprofile"]). Unknown scopes contribute no fields.
	Scope []string

	// ProfileFields lists explicit profile fields to request ahead of the
	// scope-derived ones.
	ProfileFields []string

	// ProfileURL overrides the profile endpoint template. Mainly for tests
	// and API proxies; defaults to the LinkedIn people endpoint.
	ProfileURL string

	// AccessTokenField is the inbound request parameter carrying the access
	// token. Default: "oauth2_access_token".
	AccessTokenField string

	// RefreshTokenField is the inbound request parameter carrying the
	// refresh token. Default: "refresh_token".
	RefreshTokenField string

	// HTTPClient is a custom HTTP client for provider requests.
	// If nil, a client with a 30s timeout is used.
	HTTPClient *http.Client

	// RequestTimeout is the deadline applied to provider calls when the
	// caller's context has none. Default: 30s.
	RequestTimeout time.Duration

	// Logger for structured logging (optional, slog.Default() if nil).
	// Token values are never logged, only short prefixes and metadata.
	Logger *slog.Logger

	// RateLimit optionally bounds profile fetches per caller.
	RateLimit RateLimitConfig

	// Instrumentation enables OpenTelemetry metrics and tracing (optional).
	Instrumentation *instrumentation.Instrumentation
}

// RateLimitConfig holds the optional per-caller limit on provider calls.
// Attempts rejected by the limiter terminate on the error channel with a
// *RateLimitError before any LinkedIn API traffic is generated.
type RateLimitConfig struct {
	// Rate is profile fetches per second allowed per client IP.
	// Zero disables limiting.
	Rate int

	// Burst is the maximum burst size per client IP.
	Burst int

	// TrustProxy enables trusting X-Forwarded-For and X-Real-IP headers.
	// Only enable behind a trusted reverse proxy.
	TrustProxy bool

	// TrustedProxyCount is how many proxies at the right of X-Forwarded-For
	// are trusted. Zero assumes one.
	TrustedProxyCount int
}
