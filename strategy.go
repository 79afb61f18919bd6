package linkedintoken

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	"github.com/oauthkit/linkedin-token/instrumentation"
	"github.com/oauthkit/linkedin-token/internal/util"
	"github.com/oauthkit/linkedin-token/profile"
	"github.com/oauthkit/linkedin-token/security"
)

// StrategyName is the identifier host middleware registries use for this
// strategy.
const StrategyName = "linkedin-token"

// Terminal outcomes of one authentication attempt
const (
	outcomeSuccess = "success"
	outcomeFail    = "fail"
	outcomeError   = "error"
)

// Strategy authenticates requests carrying a client-supplied LinkedIn access
// token. It is immutable after construction and safe for concurrent use; each
// authentication attempt is self-contained.
type Strategy struct {
	oauth      *oauth2.Config
	httpClient *http.Client

	profileURL        string
	accessTokenField  string
	refreshTokenField string
	requestTimeout    time.Duration

	logger *slog.Logger
	inst   *instrumentation.Instrumentation

	limiter           *security.RateLimiter
	trustProxy        bool
	trustedProxyCount int

	verify        VerifyFunc
	verifyRequest VerifyRequestFunc
}

// New creates a strategy whose verification callback receives the credentials
// and normalized profile. Construction fails without client credentials or a
// callback.
func New(cfg *Config, verify VerifyFunc) (*Strategy, error) {
	if verify == nil {
		return nil, fmt.Errorf("verify callback is required")
	}

	s, err := newStrategy(cfg)
	if err != nil {
		return nil, err
	}
	s.verify = verify
	return s, nil
}

// NewWithRequest creates a strategy whose verification callback additionally
// receives the inbound request. Use this instead of New when the callback
// needs request headers or connection state.
func NewWithRequest(cfg *Config, verify VerifyRequestFunc) (*Strategy, error) {
	if verify == nil {
		return nil, fmt.Errorf("verify callback is required")
	}

	s, err := newStrategy(cfg)
	if err != nil {
		return nil, err
	}
	s.verifyRequest = verify
	return s, nil
}

func newStrategy(cfg *Config) (*Strategy, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client secret is required")
	}

	scope := cfg.Scope
	if len(scope) == 0 {
		scope = defaultScope
	}
	// Deep copy to keep the strategy immutable if the caller mutates cfg
	scopeCopy := make([]string, len(scope))
	copy(scopeCopy, scope)
	scope = scopeCopy

	endpoint := linkedin.Endpoint
	if cfg.AuthorizationURL != "" {
		endpoint.AuthURL = cfg.AuthorizationURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	accessTokenField := cfg.AccessTokenField
	if accessTokenField == "" {
		accessTokenField = defaultAccessTokenField
	}
	refreshTokenField := cfg.RefreshTokenField
	if refreshTokenField == "" {
		refreshTokenField = defaultRefreshTokenField
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = defaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Strategy{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       scope,
			Endpoint:     endpoint,
		},
		httpClient:        httpClient,
		profileURL:        buildProfileURL(cfg.ProfileURL, scope, cfg.ProfileFields),
		accessTokenField:  accessTokenField,
		refreshTokenField: refreshTokenField,
		requestTimeout:    requestTimeout,
		logger:            logger,
		inst:              cfg.Instrumentation,
		trustProxy:        cfg.RateLimit.TrustProxy,
		trustedProxyCount: cfg.RateLimit.TrustedProxyCount,
	}

	if cfg.RateLimit.Rate > 0 {
		s.limiter = security.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst, logger)
	}

	return s, nil
}

// buildProfileURL assembles the profile endpoint once at construction: the
// endpoint template, the field selector derived from scopes and explicit
// fields, and the JSON format marker.
func buildProfileURL(base string, scope, explicitFields []string) string {
	if base == "" {
		base = defaultProfileURL
	}
	base = util.NormalizeURL(base)

	if fields := MapScopesToFields(scope, explicitFields); fields != "" {
		base += ":(" + fields + ")"
	}
	return base + "?format=json"
}

// Name returns the strategy identifier
func (s *Strategy) Name() string {
	return StrategyName
}

// Close releases background resources (the rate limiter cleanup goroutine).
// Safe to call on strategies constructed without rate limiting.
func (s *Strategy) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Authenticate runs one authentication attempt against the inbound request
// and reports exactly one terminal outcome on the responder:
//
//   - Fail when the request carries no access token or the verification
//     callback declines the user,
//   - Error on provider, transport, parse, or callback faults,
//   - Success otherwise, with the callback's user and info.
func (s *Strategy) Authenticate(ctx context.Context, r *http.Request, rsp Responder) {
	start := time.Now()

	var span trace.Span
	if s.inst != nil {
		ctx, span = s.inst.Tracer("strategy").Start(ctx, "linkedintoken.authenticate",
			trace.WithAttributes(
				attribute.String(instrumentation.AttrProviderName, profile.ProviderName),
				attribute.String(instrumentation.AttrTokenField, s.accessTokenField),
			))
		defer span.End()
	}

	creds, ok := s.extractCredentials(r)
	if span != nil {
		span.SetAttributes(attribute.Bool(instrumentation.AttrTokenPresent, ok))
	}
	if !ok {
		s.logger.Debug("access token missing from request", "field", s.accessTokenField)
		s.finish(ctx, span, start, outcomeFail, nil)
		rsp.Fail(Info{Message: "You should provide " + s.accessTokenField})
		return
	}

	if s.limiter != nil {
		clientIP := security.GetClientIP(r, s.trustProxy, s.trustedProxyCount)
		if !s.limiter.Allow(clientIP) {
			err := &RateLimitError{Identifier: clientIP}
			s.logger.Warn("authentication attempt rate limited", "client_ip", clientIP)
			if s.inst != nil {
				s.inst.Metrics().RecordRateLimitExceeded(ctx)
				span.SetAttributes(attribute.Bool(instrumentation.AttrRateLimited, true))
			}
			s.finish(ctx, span, start, outcomeError, err)
			rsp.Error(err)
			return
		}
	}

	body, err := s.fetchProfile(ctx, creds.AccessToken)
	if err != nil {
		s.logger.Warn("profile fetch failed",
			"error", err,
			"token_prefix", util.SafeTruncate(creds.AccessToken, 6))
		s.finish(ctx, span, start, outcomeError, err)
		rsp.Error(err)
		return
	}

	prof, err := profile.Normalize(body)
	if err != nil {
		s.logger.Warn("profile normalization failed", "error", err)
		s.finish(ctx, span, start, outcomeError, err)
		rsp.Error(err)
		return
	}

	user, info, err := s.runVerify(ctx, r, creds, prof)
	switch {
	case err != nil:
		s.finish(ctx, span, start, outcomeError, err)
		rsp.Error(err)
	case user == nil:
		s.logger.Debug("verification declined user", "profile_id", prof.ID)
		s.finish(ctx, span, start, outcomeFail, nil)
		rsp.Fail(info)
	default:
		s.logger.Debug("authentication succeeded", "profile_id", prof.ID)
		s.finish(ctx, span, start, outcomeSuccess, nil)
		rsp.Success(user, info)
	}
}

// extractCredentials reads the token pair from the request, body parameters
// first, then the URL query.
func (s *Strategy) extractCredentials(r *http.Request) (Credentials, bool) {
	// A malformed body only empties PostForm; the query may still carry the
	// token, so the parse error is deliberately not terminal.
	_ = r.ParseForm()

	query := r.URL.Query()

	token := r.PostForm.Get(s.accessTokenField)
	if token == "" {
		token = query.Get(s.accessTokenField)
	}
	if token == "" {
		return Credentials{}, false
	}

	refresh := r.PostForm.Get(s.refreshTokenField)
	if refresh == "" {
		refresh = query.Get(s.refreshTokenField)
	}

	return Credentials{AccessToken: token, RefreshToken: refresh}, true
}

// runVerify dispatches to whichever callback shape the strategy was
// constructed with.
func (s *Strategy) runVerify(ctx context.Context, r *http.Request, creds Credentials, p *profile.Profile) (any, Info, error) {
	if s.verifyRequest != nil {
		return s.verifyRequest(ctx, r, creds, p)
	}
	return s.verify(ctx, creds, p)
}

// finish records the attempt's metrics and span outcome
func (s *Strategy) finish(ctx context.Context, span trace.Span, start time.Time, outcome string, err error) {
	if s.inst == nil {
		return
	}
	durationMs := float64(time.Since(start).Milliseconds())
	s.inst.Metrics().RecordAuthAttempt(ctx, outcome, durationMs)
	instrumentation.SetSpanOutcome(span, outcome)
	instrumentation.RecordError(span, err)
}

// ensureContextTimeout adds the configured request timeout when the context
// has no deadline of its own. The returned cancel must be deferred.
func (s *Strategy) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}
