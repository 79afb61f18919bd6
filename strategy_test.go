package linkedintoken

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/oauthkit/linkedin-token/instrumentation"
	"github.com/oauthkit/linkedin-token/internal/testutil"
	"github.com/oauthkit/linkedin-token/profile"
)

// outcomeRecorder captures the single terminal outcome of one attempt
type outcomeRecorder struct {
	outcome string
	user    any
	info    Info
	err     error
	calls   int
}

func (o *outcomeRecorder) Success(user any, info Info) {
	o.outcome, o.user, o.info = "success", user, info
	o.calls++
}

func (o *outcomeRecorder) Fail(info Info) {
	o.outcome, o.info = "fail", info
	o.calls++
}

func (o *outcomeRecorder) Error(err error) {
	o.outcome, o.err = "error", err
	o.calls++
}

// acceptAll is a verify callback that accepts every profile as-is
func acceptAll(_ context.Context, creds Credentials, p *profile.Profile) (any, Info, error) {
	return p, Info{}, nil
}

func newTestStrategy(t *testing.T, cfg *Config, verify VerifyFunc) *Strategy {
	t.Helper()
	if cfg.ClientID == "" {
		cfg.ClientID = "client-id"
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = "client-secret"
	}
	if verify == nil {
		verify = acceptAll
	}
	s, err := New(cfg, verify)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func tokenRequest(t *testing.T, field, token string) *http.Request {
	t.Helper()
	form := url.Values{field: {token}}
	r := httptest.NewRequest(http.MethodPost, "/auth/linkedin/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		verify  VerifyFunc
		wantErr string
	}{
		{
			name:    "nil config",
			cfg:     nil,
			verify:  acceptAll,
			wantErr: "config is required",
		},
		{
			name:    "missing client ID",
			cfg:     &Config{ClientSecret: "secret"},
			verify:  acceptAll,
			wantErr: "client ID is required",
		},
		{
			name:    "missing client secret",
			cfg:     &Config{ClientID: "id"},
			verify:  acceptAll,
			wantErr: "client secret is required",
		},
		{
			name:    "missing verify callback",
			cfg:     &Config{ClientID: "id", ClientSecret: "secret"},
			verify:  nil,
			wantErr: "verify callback is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.verify)
			if err == nil {
				t.Fatal("New() succeeded, want error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("New() error = %q, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	s := newTestStrategy(t, &Config{}, nil)

	if s.Name() != "linkedin-token" {
		t.Errorf("Name() = %q, want %q", s.Name(), "linkedin-token")
	}
	if s.accessTokenField != "oauth2_access_token" {
		t.Errorf("accessTokenField = %q, want %q", s.accessTokenField, "oauth2_access_token")
	}
	if s.refreshTokenField != "refresh_token" {
		t.Errorf("refreshTokenField = %q, want %q", s.refreshTokenField, "refresh_token")
	}
	if got := s.oauth.Endpoint.AuthURL; !strings.Contains(got, "linkedin.com") {
		t.Errorf("default AuthURL = %q, want a linkedin.com endpoint", got)
	}
	if got := s.oauth.Scopes; len(got) != 1 || got[0] != "r_basicprofile" {
		t.Errorf("default scopes = %v, want [r_basicprofile]", got)
	}
	if !strings.HasPrefix(s.profileURL, "https://api.linkedin.com/v1/people/~:(") {
		t.Errorf("profileURL = %q, want the people endpoint with a field selector", s.profileURL)
	}
	if !strings.HasSuffix(s.profileURL, "?format=json") {
		t.Errorf("profileURL = %q, want format marker suffix", s.profileURL)
	}
}

func TestNew_EndpointOverrides(t *testing.T) {
	s := newTestStrategy(t, &Config{
		AuthorizationURL: "https://example.com/authorize",
		TokenURL:         "https://example.com/token",
	}, nil)

	if s.oauth.Endpoint.AuthURL != "https://example.com/authorize" {
		t.Errorf("AuthURL = %q, want override", s.oauth.Endpoint.AuthURL)
	}
	if s.oauth.Endpoint.TokenURL != "https://example.com/token" {
		t.Errorf("TokenURL = %q, want override", s.oauth.Endpoint.TokenURL)
	}
}

func TestBuildProfileURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		scope    []string
		explicit []string
		want     string
	}{
		{
			name:  "email scope",
			base:  "https://example.com/people/~",
			scope: []string{"r_emailaddress"},
			want:  "https://example.com/people/~:(email-address)?format=json",
		},
		{
			name:  "unknown scope yields no selector",
			base:  "https://example.com/people/~",
			scope: []string{"w_share"},
			want:  "https://example.com/people/~?format=json",
		},
		{
			name:     "trailing slash normalized",
			base:     "https://example.com/people/~/",
			explicit: []string{"id"},
			scope:    []string{},
			want:     "https://example.com/people/~:(id)?format=json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildProfileURL(tt.base, tt.scope, tt.explicit); got != tt.want {
				t.Errorf("buildProfileURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		request     func(t *testing.T) *http.Request
		wantMessage string
	}{
		{
			name: "no token anywhere",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/auth/linkedin/token", nil)
			},
			wantMessage: "You should provide oauth2_access_token",
		},
		{
			name: "custom field name in message",
			cfg:  Config{AccessTokenField: "li_token"},
			request: func(t *testing.T) *http.Request {
				return tokenRequest(t, "oauth2_access_token", "ignored-wrong-field")
			},
			wantMessage: "You should provide li_token",
		},
		{
			name: "empty token value",
			request: func(t *testing.T) *http.Request {
				return tokenRequest(t, "oauth2_access_token", "")
			},
			wantMessage: "You should provide oauth2_access_token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStrategy(t, &tt.cfg, nil)
			rec := &outcomeRecorder{}

			s.Authenticate(context.Background(), tt.request(t), rec)

			if rec.outcome != "fail" {
				t.Fatalf("outcome = %q (err=%v), want fail", rec.outcome, rec.err)
			}
			if rec.info.Message != tt.wantMessage {
				t.Errorf("info.Message = %q, want %q", rec.info.Message, tt.wantMessage)
			}
			if rec.calls != 1 {
				t.Errorf("responder invoked %d times, want exactly once", rec.calls)
			}
		})
	}
}

func TestAuthenticate_TokenExtraction(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = testutil.BearerToken(r)
		_, _ = w.Write([]byte(testutil.SampleProfileBody))
	}))
	defer srv.Close()

	tests := []struct {
		name      string
		request   func(t *testing.T) *http.Request
		wantToken string
	}{
		{
			name: "token in body",
			request: func(t *testing.T) *http.Request {
				return tokenRequest(t, "oauth2_access_token", "body-token")
			},
			wantToken: "body-token",
		},
		{
			name: "token in query",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodGet,
					"/auth/linkedin/token?oauth2_access_token=query-token", nil)
			},
			wantToken: "query-token",
		},
		{
			name: "body preferred over query",
			request: func(t *testing.T) *http.Request {
				form := url.Values{"oauth2_access_token": {"body-token"}}
				r := httptest.NewRequest(http.MethodPost,
					"/auth/linkedin/token?oauth2_access_token=query-token",
					strings.NewReader(form.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			wantToken: "body-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotToken = ""
			s := newTestStrategy(t, &Config{ProfileURL: srv.URL + "/v1/people/~"}, nil)
			rec := &outcomeRecorder{}

			s.Authenticate(context.Background(), tt.request(t), rec)

			if rec.outcome != "success" {
				t.Fatalf("outcome = %q (err=%v), want success", rec.outcome, rec.err)
			}
			if gotToken != tt.wantToken {
				t.Errorf("bearer token sent to provider = %q, want %q", gotToken, tt.wantToken)
			}
		})
	}
}

func TestAuthenticate_Success(t *testing.T) {
	srv := testutil.NewProviderServer(http.StatusOK, testutil.SampleProfileBody)
	defer srv.Close()

	var gotCreds Credentials
	var gotProfile *profile.Profile
	verify := func(_ context.Context, creds Credentials, p *profile.Profile) (any, Info, error) {
		gotCreds = creds
		gotProfile = p
		return map[string]string{"id": p.ID}, Info{Message: "welcome"}, nil
	}

	s := newTestStrategy(t, &Config{ProfileURL: srv.URL + "/v1/people/~"}, verify)
	rec := &outcomeRecorder{}

	form := url.Values{
		"oauth2_access_token": {"tok-1"},
		"refresh_token":       {"refresh-1"},
	}
	r := httptest.NewRequest(http.MethodPost, "/auth/linkedin/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	s.Authenticate(context.Background(), r, rec)

	if rec.outcome != "success" {
		t.Fatalf("outcome = %q (err=%v), want success", rec.outcome, rec.err)
	}
	if gotCreds.AccessToken != "tok-1" || gotCreds.RefreshToken != "refresh-1" {
		t.Errorf("credentials = %+v, want access tok-1 and refresh refresh-1", gotCreds)
	}
	if gotProfile.ID != "abc123" || gotProfile.DisplayName != "Jordan Kim" {
		t.Errorf("profile = %+v, want normalized sample profile", gotProfile)
	}
	if rec.info.Message != "welcome" {
		t.Errorf("info.Message = %q, want %q", rec.info.Message, "welcome")
	}
	user, ok := rec.user.(map[string]string)
	if !ok || user["id"] != "abc123" {
		t.Errorf("user = %v, want map with id abc123", rec.user)
	}
}

func TestAuthenticate_ProviderErrorEnvelope(t *testing.T) {
	srv := testutil.NewProviderServer(http.StatusUnauthorized,
		testutil.ErrorEnvelope("MESSAGE", "CODE"))
	defer srv.Close()

	s := newTestStrategy(t, &Config{ProfileURL: srv.URL + "/v1/people/~"}, nil)
	rec := &outcomeRecorder{}

	s.Authenticate(context.Background(), tokenRequest(t, "oauth2_access_token", "bad-token"), rec)

	if rec.outcome != "error" {
		t.Fatalf("outcome = %q, want error", rec.outcome)
	}
	var apiErr *APIError
	if !errors.As(rec.err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", rec.err)
	}
	if apiErr.Message != "MESSAGE" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "MESSAGE")
	}
	if apiErr.Code != "CODE" {
		t.Errorf("Code = %q, want %q", apiErr.Code, "CODE")
	}
}

func TestAuthenticate_UnparseableProviderFailure(t *testing.T) {
	srv := testutil.NewProviderServer(http.StatusBadGateway, "upstream exploded")
	defer srv.Close()

	s := newTestStrategy(t, &Config{ProfileURL: srv.URL + "/v1/people/~"}, nil)
	rec := &outcomeRecorder{}

	s.Authenticate(context.Background(), tokenRequest(t, "oauth2_access_token", "tok"), rec)

	if rec.outcome != "error" {
		t.Fatalf("outcome = %q, want error", rec.outcome)
	}
	var fetchErr *FetchError
	if !errors.As(rec.err, &fetchErr) {
		t.Errorf("error type = %T, want *FetchError", rec.err)
	}
}

func TestAuthenticate_MalformedProfileBody(t *testing.T) {
	srv := testutil.NewProviderServer(http.StatusOK, "this is not json")
	defer srv.Close()

	s := newTestStrategy(t, &Config{ProfileURL: srv.URL + "/v1/people/~"}, nil)
	rec := &outcomeRecorder{}

	s.Authenticate(context.Background(), tokenRequest(t, "oauth2_access_token", "tok"), rec)

	if rec.outcome != "error" {
		t.Fatalf("outcome = %q, want error", rec.outcome)
	}
	var parseErr *profile.ParseError
	if !errors.As(rec.err, &parseErr) {
		t.Errorf("error type = %T, want *profile.ParseError", rec.err)
	}
}

func TestAuthenticate_VerifyOutcomes(t *testing.T) {
	srv := testutil.NewProviderServer(http.StatusOK, testutil.SampleProfileBody)
	defer srv.Close()

	verifyErr := errors.New("database unavailable")

	tests := []struct {
		name        string
		verify      VerifyFunc
		wantOutcome string
		wantErr     error
		wantMessage string
	}{
		{
			name: "callback error goes to the error channel",
			verify: func(context.Context, Credentials, *profile.Profile) (any, Info, error) {
				return nil, Info{}, verifyErr
			},
			wantOutcome: "error",
			wantErr:     verifyErr,
		},
		{
			name: "nil user is a soft failure",
			verify: func(context.Context, Credentials, *profile.Profile) (any, Info, error) {
				return nil, Info{Message: "account suspended"}, nil
			},
			wantOutcome: "fail",
			wantMessage: "account suspended",
		},
		{
			name: "user completes the attempt",
			verify: func(_ context.Context, _ Credentials, p *profile.Profile) (any, Info, error) {
				return p.ID, Info{}, nil
			},
			wantOutcome: "success",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStrategy(t, &Config{ProfileURL: srv.URL + "/v1/people/~"}, tt.verify)
			rec := &outcomeRecorder{}

			s.Authenticate(context.Background(), tokenRequest(t, "oauth2_access_token", "tok"), rec)

			if rec.outcome != tt.wantOutcome {
				t.Fatalf("outcome = %q (err=%v), want %q", rec.outcome, rec.err, tt.wantOutcome)
			}
			if tt.wantErr != nil && !errors.Is(rec.err, tt.wantErr) {
				t.Errorf("err = %v, want %v", rec.err, tt.wantErr)
			}
			if tt.wantMessage != "" && rec.info.Message != tt.wantMessage {
				t.Errorf("info.Message = %q, want %q", rec.info.Message, tt.wantMessage)
			}
			if rec.calls != 1 {
				t.Errorf("responder invoked %d times, want exactly once", rec.calls)
			}
		})
	}
}

func TestAuthenticate_RequestAwareCallback(t *testing.T) {
	srv := testutil.NewProviderServer(http.StatusOK, testutil.SampleProfileBody)
	defer srv.Close()

	var gotRequest *http.Request
	verify := func(_ context.Context, r *http.Request, _ Credentials, p *profile.Profile) (any, Info, error) {
		gotRequest = r
		return p.ID, Info{}, nil
	}

	s, err := NewWithRequest(&Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		ProfileURL:   srv.URL + "/v1/people/~",
	}, verify)
	if err != nil {
		t.Fatalf("NewWithRequest() error = %v", err)
	}
	defer s.Close()

	r := tokenRequest(t, "oauth2_access_token", "tok")
	r.Header.Set("X-Request-ID", "req-42")
	rec := &outcomeRecorder{}

	s.Authenticate(context.Background(), r, rec)

	if rec.outcome != "success" {
		t.Fatalf("outcome = %q (err=%v), want success", rec.outcome, rec.err)
	}
	if gotRequest == nil || gotRequest.Header.Get("X-Request-ID") != "req-42" {
		t.Errorf("callback did not receive the inbound request")
	}
}

func TestAuthenticate_WithInstrumentation(t *testing.T) {
	srv := testutil.NewProviderServer(http.StatusOK, testutil.SampleProfileBody)
	defer srv.Close()

	inst, err := instrumentation.New(instrumentation.Config{
		ServiceName: "strategy-test",
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("instrumentation.New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	s := newTestStrategy(t, &Config{
		ProfileURL:      srv.URL + "/v1/people/~",
		Instrumentation: inst,
	}, nil)

	// Success and fail paths both record through the noop pipeline without
	// disturbing the outcome.
	success := &outcomeRecorder{}
	s.Authenticate(context.Background(), tokenRequest(t, "oauth2_access_token", "tok"), success)
	if success.outcome != "success" {
		t.Fatalf("outcome = %q (err=%v), want success", success.outcome, success.err)
	}

	missing := &outcomeRecorder{}
	s.Authenticate(context.Background(),
		httptest.NewRequest(http.MethodPost, "/auth/linkedin/token", nil), missing)
	if missing.outcome != "fail" {
		t.Fatalf("outcome = %q, want fail", missing.outcome)
	}
}

func TestAuthenticate_RateLimited(t *testing.T) {
	var providerCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerCalls++
		_, _ = w.Write([]byte(testutil.SampleProfileBody))
	}))
	defer srv.Close()

	s := newTestStrategy(t, &Config{
		ProfileURL: srv.URL + "/v1/people/~",
		RateLimit:  RateLimitConfig{Rate: 1, Burst: 1},
	}, nil)

	// First attempt consumes the burst, second must be rejected before any
	// provider traffic.
	first := &outcomeRecorder{}
	s.Authenticate(context.Background(), tokenRequest(t, "oauth2_access_token", "tok"), first)
	if first.outcome != "success" {
		t.Fatalf("first outcome = %q (err=%v), want success", first.outcome, first.err)
	}

	second := &outcomeRecorder{}
	s.Authenticate(context.Background(), tokenRequest(t, "oauth2_access_token", "tok"), second)
	if second.outcome != "error" {
		t.Fatalf("second outcome = %q, want error", second.outcome)
	}
	var rateErr *RateLimitError
	if !errors.As(second.err, &rateErr) {
		t.Errorf("error type = %T, want *RateLimitError", second.err)
	}
	if providerCalls != 1 {
		t.Errorf("provider calls = %d, want 1 (limited attempt must not reach the provider)", providerCalls)
	}
}
