package gate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/envelope"
	"github.com/MrEthical07/goGate/ratelimit"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type authResult struct {
	acc *account.Account
	err error
}

type fakeAuth map[string]authResult

func (f fakeAuth) Authenticate(_ context.Context, token string) (*account.Account, error) {
	res, ok := f[token]
	if !ok {
		return nil, goGate.ErrAccountNotFound
	}
	return res.acc, res.err
}

type failingLimiter struct{}

func (failingLimiter) RecordAndEvaluate(context.Context, string, bool) (ratelimit.SessionMeta, error) {
	return ratelimit.SessionMeta{}, ratelimit.ErrRedisUnavailable
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newLimiter() *ratelimit.Limiter {
	return ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.DefaultConfig(),
		ratelimit.WithClock(func() time.Time { return fixedNow }))
}

type harness struct {
	gate    *Gate
	metrics *goGate.Metrics
	calls   int
	seen    *RequestData
	body    string
}

func newHarness(auth Authenticator, opts ...Option) *harness {
	h := &harness{metrics: goGate.NewMetrics(goGate.MetricsConfig{Enabled: true})}
	opts = append([]Option{WithMetrics(h.metrics)}, opts...)
	h.gate = New(newLimiter(), auth, opts...)
	return h
}

func (h *harness) handler(p Policy) http.Handler {
	return h.gate.Wrap(p, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls++
		h.seen, _ = FromContext(r.Context())
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			h.body = string(raw)
		}
		envelope.OK(w, MetaFromContext(r.Context()), http.StatusOK, "", "ok")
	}))
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope.Body {
	t.Helper()
	var body envelope.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMissingHeaderWinsOverBadBody(t *testing.T) {
	h := newHarness(fakeAuth{})
	p := Policy{
		RateLimit:       true,
		RequiredHeaders: []string{"X-Client"},
		BodyRegex:       map[string]string{"email": `[^@]+@[^@]+`},
	}

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"email":"nope"}`))
	rec := serve(h.handler(p), req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Equal(t, []envelope.ErrorCode{envelope.CodeMissingHeader}, body.Errors)
	require.Equal(t, "Missing required header: X-Client", body.Note)
	require.Empty(t, rec.Header().Get(envelope.HeaderRemaining))
	require.Zero(t, h.calls)
}

func TestLintOrder(t *testing.T) {
	h := newHarness(fakeAuth{})
	p := Policy{
		RequiredQueryParams: []string{"page"},
		RequiredHeaders:     []string{"X-Client"},
		RequiredBodyFields:  []string{"name"},
	}

	rec := serve(h.handler(p), httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`)))
	require.Equal(t, []envelope.ErrorCode{envelope.CodeMissingQueryParameter}, decode(t, rec).Errors)
	require.Equal(t, "Missing required query parameter: page", decode(t, rec).Note)

	req := httptest.NewRequest(http.MethodPost, "/x?page=1", strings.NewReader(`{}`))
	req.Header.Set("X-Client", "web")
	rec = serve(h.handler(p), req)
	require.Equal(t, []envelope.ErrorCode{envelope.CodeMissingBodyProperty}, decode(t, rec).Errors)
	require.Equal(t, "Missing required property in the body: name", decode(t, rec).Note)
}

func TestPatternNotes(t *testing.T) {
	h := newHarness(fakeAuth{})

	p := Policy{QueryRegex: map[string]string{"page": `\d+`}}
	rec := serve(h.handler(p), httptest.NewRequest(http.MethodGet, "/x?page=1&page=two", nil))
	body := decode(t, rec)
	require.Equal(t, []envelope.ErrorCode{envelope.CodeInvalidQueryValue}, body.Errors)
	require.Equal(t, `Invalid query value page=two, (must match /\d+/)`, body.Note)

	p = Policy{HeaderRegex: map[string]string{"X-Version": `v\d`}}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Version", "v10")
	body = decode(t, serve(h.handler(p), req))
	require.Equal(t, []envelope.ErrorCode{envelope.CodeInvalidHeaderValue}, body.Errors)
	require.Equal(t, `Invalid header value [X-Version: v10], (must match /v\d/)`, body.Note)

	p = Policy{BodyRegex: map[string]string{"age": `\d+`}}
	body = decode(t, serve(h.handler(p), httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"age":1.5}`))))
	require.Equal(t, []envelope.ErrorCode{envelope.CodeInvalidBodyValue}, body.Errors)
	require.Equal(t, `Invalid body value {age: 1.5}, (must match /\d+/)`, body.Note)
	require.Zero(t, h.calls)
}

func TestBodyValueStringification(t *testing.T) {
	h := newHarness(fakeAuth{})
	p := Policy{BodyRegex: map[string]string{
		"age":    `\d+`,
		"active": `true|false`,
		"tags":   `\["a","b"\]`,
		"nick":   `x+`,
	}}

	payload := `{"age": 1.0, "active": true, "tags": ["a", "b"], "nick": null}`
	rec := serve(h.handler(p), httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, h.calls)
	require.Equal(t, payload, h.body)
}

func TestMalformedBody(t *testing.T) {
	h := newHarness(fakeAuth{})
	p := Policy{RequiredBodyFields: []string{"email"}}

	rec := serve(h.handler(p), httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`[1,2]`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Equal(t, []envelope.ErrorCode{envelope.CodeBadRequest}, body.Errors)
	require.NotEmpty(t, body.Note)
	require.Zero(t, h.calls)
	require.EqualValues(t, 1, h.metrics.Value(goGate.MetricGateLintRejected))
}

func TestOversizedBodyIsBadRequest(t *testing.T) {
	h := newHarness(fakeAuth{}, WithMaxBodyBytes(64))
	p := Policy{RequiredBodyFields: []string{"email"}}
	payload := `{"email":"` + strings.Repeat("a", 100) + `@example.com"}`

	rec := serve(h.handler(p), httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(payload)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Equal(t, []envelope.ErrorCode{envelope.CodeBadRequest}, body.Errors)
	require.Contains(t, body.Note, "exceeds 64 bytes")
	require.Zero(t, h.calls)

	small := `{"email":"a@example.com"}`
	rec = serve(h.handler(p), httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(small)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, small, h.body)
}

func TestBodyNotParsedWithoutBodyRules(t *testing.T) {
	h := newHarness(fakeAuth{})
	rec := serve(h.handler(Policy{}), httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`not json`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "not json", h.body)
}

func TestRateLimitBlocksSixteenthRequest(t *testing.T) {
	h := newHarness(fakeAuth{})
	handler := h.handler(Policy{RateLimit: true})

	for i := 1; i <= 15; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "198.51.100.1:5000"
		rec := serve(handler, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	rec := serve(handler, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "-1", rec.Header().Get(envelope.HeaderRemaining))
	require.Equal(t, "false", rec.Header().Get(envelope.HeaderSuccess))
	require.Equal(t, "198.51.100.1", rec.Header().Get(envelope.HeaderRequestedAs))
	require.Equal(t, []envelope.ErrorCode{envelope.CodeTooManyRequests}, decode(t, rec).Errors)

	other := httptest.NewRequest(http.MethodGet, "/x", nil)
	other.RemoteAddr = "198.51.100.2:5000"
	rec = serve(handler, other)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "14", rec.Header().Get(envelope.HeaderRemaining))

	require.EqualValues(t, 1, h.metrics.Value(goGate.MetricGateRateLimited))
	require.EqualValues(t, 16, h.metrics.Value(goGate.MetricGateAllowed))
}

func TestUncountedPolicyNeverBlocks(t *testing.T) {
	h := newHarness(fakeAuth{})
	handler := h.handler(Policy{})

	var rec *httptest.ResponseRecorder
	for i := 0; i < 20; i++ {
		rec = serve(handler, httptest.NewRequest(http.MethodGet, "/x", nil))
	}
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "false", rec.Header().Get(envelope.HeaderCounted))
	require.Equal(t, "15", rec.Header().Get(envelope.HeaderRemaining))
}

func TestAuthRules(t *testing.T) {
	verified := &account.Account{AccountID: "v", EmailVerified: true}
	unverified := &account.Account{AccountID: "u"}
	auth := fakeAuth{
		"v:ok":    {acc: verified},
		"u:ok":    {acc: unverified},
		"gone:ok": {err: goGate.ErrAccountNotFound},
		"v:stale": {err: goGate.ErrTokenInvalid},
	}

	cases := []struct {
		name       string
		policy     Policy
		header     string
		wantStatus int
		wantCodes  []envelope.ErrorCode
		wantAcc    *account.Account
	}{
		{
			name:       "absent header required",
			policy:     Policy{RequireAuthHeader: true, RequireValidAuth: true},
			wantStatus: http.StatusUnauthorized,
			wantCodes:  []envelope.ErrorCode{envelope.CodeAuthorizationInvalid},
		},
		{
			name:       "absent header optional",
			policy:     Policy{RequireAuthHeader: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong scheme required",
			policy:     Policy{RequireAuthHeader: true, RequireValidAuth: true},
			header:     "Basic v:ok",
			wantStatus: http.StatusUnauthorized,
			wantCodes:  []envelope.ErrorCode{envelope.CodeAuthorizationInvalid},
		},
		{
			name:       "unknown account required",
			policy:     Policy{RequireAuthHeader: true, RequireValidAuth: true},
			header:     "Bearer gone:ok",
			wantStatus: http.StatusUnauthorized,
			wantCodes:  []envelope.ErrorCode{envelope.CodeAuthorizationInvalid, envelope.CodeAuthorizationRequired},
		},
		{
			name:       "unknown account optional",
			policy:     Policy{RequireAuthHeader: true},
			header:     "Bearer gone:ok",
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid token optional",
			policy:     Policy{RequireAuthHeader: true},
			header:     "Bearer v:stale",
			wantStatus: http.StatusUnauthorized,
			wantCodes:  []envelope.ErrorCode{envelope.CodeAuthorizationInvalid},
		},
		{
			name:       "unverified email",
			policy:     Policy{RequireAuthHeader: true, RequireValidAuth: true, RequireVerifiedEmail: true},
			header:     "Bearer u:ok",
			wantStatus: http.StatusUnauthorized,
			wantCodes:  []envelope.ErrorCode{envelope.CodeAuthorizationInvalid, envelope.CodeEmailNotVerified},
		},
		{
			name:       "unverified allowed",
			policy:     Policy{RequireAuthHeader: true, RequireValidAuth: true},
			header:     "Bearer u:ok",
			wantStatus: http.StatusOK,
			wantAcc:    unverified,
		},
		{
			name:       "verified",
			policy:     Policy{RequireAuthHeader: true, RequireValidAuth: true, RequireVerifiedEmail: true},
			header:     "Bearer v:ok",
			wantStatus: http.StatusOK,
			wantAcc:    verified,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(auth)
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := serve(h.handler(tc.policy), req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus != http.StatusOK {
				require.Equal(t, tc.wantCodes, decode(t, rec).Errors)
				require.NotEmpty(t, rec.Header().Get(envelope.HeaderRemaining))
				require.Zero(t, h.calls)
				return
			}
			require.Equal(t, 1, h.calls)
			require.NotNil(t, h.seen)
			require.Equal(t, tc.wantAcc, h.seen.Account)
		})
	}
}

func newEngine(t *testing.T) *goGate.Engine {
	t.Helper()

	cfg := goGate.DefaultConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Audit.Enabled = false

	engine, err := goGate.New().
		WithConfig(cfg).
		WithAccountStore(account.NewMemoryStore()).
		WithClock(func() time.Time { return fixedNow }).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine
}

func TestAuthRulesWithEngine(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	acc, err := engine.CreateAccount(ctx, "A", "a@example.com", "first")
	require.NoError(t, err)
	stale, err := engine.IssueToken(acc)
	require.NoError(t, err)

	require.NoError(t, engine.InitiatePasswordReset(ctx, acc))
	require.NoError(t, engine.TryResetPassword(ctx, acc, acc.ResetRequestID, "second"))
	current, err := engine.IssueToken(acc)
	require.NoError(t, err)

	optional := Policy{RequireAuthHeader: true}
	required := Policy{RequireAuthHeader: true, RequireValidAuth: true}
	verified := Policy{RequireAuthHeader: true, RequireValidAuth: true, RequireVerifiedEmail: true}

	cases := []struct {
		name       string
		policy     Policy
		token      string
		wantStatus int
		wantCodes  []envelope.ErrorCode
		wantAcc    bool
	}{
		{"unknown id without separator optional", optional, "unknownaccountid", http.StatusOK, nil, false},
		{"unknown id without separator required", required, "unknownaccountid", http.StatusUnauthorized,
			[]envelope.ErrorCode{envelope.CodeAuthorizationInvalid, envelope.CodeAuthorizationRequired}, false},
		{"unknown id with challenge required", required, "unknownaccountid:Zm9v", http.StatusUnauthorized,
			[]envelope.ErrorCode{envelope.CodeAuthorizationInvalid, envelope.CodeAuthorizationRequired}, false},
		{"empty id required", required, ":Zm9v", http.StatusUnauthorized,
			[]envelope.ErrorCode{envelope.CodeAuthorizationInvalid, envelope.CodeAuthorizationRequired}, false},
		{"known id without challenge", optional, acc.AccountID, http.StatusUnauthorized,
			[]envelope.ErrorCode{envelope.CodeAuthorizationInvalid}, false},
		{"known id with undecodable challenge", required, acc.AccountID + ":%%%", http.StatusUnauthorized,
			[]envelope.ErrorCode{envelope.CodeAuthorizationInvalid}, false},
		{"token from before password change", optional, stale, http.StatusUnauthorized,
			[]envelope.ErrorCode{envelope.CodeAuthorizationInvalid}, false},
		{"current token", required, current, http.StatusOK, nil, true},
		{"current token unverified email", verified, current, http.StatusUnauthorized,
			[]envelope.ErrorCode{envelope.CodeAuthorizationInvalid, envelope.CodeEmailNotVerified}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(engine)
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			rec := serve(h.handler(tc.policy), req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus != http.StatusOK {
				require.Equal(t, tc.wantCodes, decode(t, rec).Errors)
				require.Zero(t, h.calls)
				return
			}
			require.Equal(t, 1, h.calls)
			if !tc.wantAcc {
				require.Nil(t, h.seen.Account)
				return
			}
			require.NotNil(t, h.seen.Account)
			require.Equal(t, acc.AccountID, h.seen.Account.AccountID)
		})
	}
}

func TestUnexpectedErrorsAreLoggedAsInternal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	auth := fakeAuth{"a:b": {err: errors.New("db down")}}
	h := newHarness(auth, WithLogger(zap.New(core)))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer a:b")
	rec := serve(h.handler(Policy{RequireAuthHeader: true}), req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	require.Equal(t, []envelope.ErrorCode{envelope.CodeInternalError}, body.Errors)
	require.Empty(t, body.Note)
	require.Equal(t, 1, logs.Len())
	require.NotEmpty(t, logs.All()[0].ContextMap()["error_id"])

	g := New(failingLimiter{}, auth)
	rec = httptest.NewRecorder()
	g.Wrap(Policy{RateLimit: true}, http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMiddlewarePropagatesClientContext(t *testing.T) {
	h := newHarness(fakeAuth{})
	var ip string
	handler := h.gate.Middleware(Policy{RateLimit: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = MetaFromContext(r.Context()).IP
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "192.0.2.44:1234"
	rec := serve(handler, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "192.0.2.44", ip)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	req.Header.Set("X-Real-IP", "203.0.113.6")

	require.Equal(t, "10.0.0.1", clientIP(req, false))
	require.Equal(t, "203.0.113.5", clientIP(req, true))

	req.Header.Del("X-Forwarded-For")
	require.Equal(t, "203.0.113.6", clientIP(req, true))

	req.RemoteAddr = "garbage"
	require.Equal(t, ratelimit.UnknownIP, clientIP(req, false))
}

func TestInvalidPatternIsInternalError(t *testing.T) {
	h := newHarness(fakeAuth{})
	rec := serve(h.handler(Policy{QueryRegex: map[string]string{"q": `(`}}), httptest.NewRequest(http.MethodGet, "/x?q=1", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
