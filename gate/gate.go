package gate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/envelope"
	"github.com/MrEthical07/goGate/ratelimit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RateLimiter evaluates a request against the caller's quota.
type RateLimiter interface {
	RecordAndEvaluate(ctx context.Context, ip string, shouldCount bool) (ratelimit.SessionMeta, error)
}

// Authenticator resolves a bearer token to an account. It returns
// goGate.ErrAccountNotFound when the token names no account and
// goGate.ErrTokenInvalid when the token does not prove the account's
// current password.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*account.Account, error)
}

// DefaultMaxBodyBytes bounds the body read for body lint rules.
const DefaultMaxBodyBytes int64 = 1 << 20

// Option customizes a Gate.
type Option func(*Gate)

// WithLogger sets the logger for unexpected failures.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics records gate outcomes into m.
func WithMetrics(m *goGate.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// WithTrustedProxy makes the gate read the client IP from X-Forwarded-For
// and X-Real-IP.
func WithTrustedProxy(trust bool) Option {
	return func(g *Gate) { g.trustProxy = trust }
}

// WithMaxBodyBytes caps the body read for body lint rules. Larger bodies
// are rejected with BAD_REQUEST. Values <= 0 keep DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(g *Gate) {
		if n > 0 {
			g.maxBody = n
		}
	}
}

// Gate runs the preprocessing pipeline for any number of policies.
// It is safe for concurrent use.
type Gate struct {
	limiter    RateLimiter
	auth       Authenticator
	logger     *zap.Logger
	metrics    *goGate.Metrics
	trustProxy bool
	maxBody    int64
	patterns   patternCache
}

// New builds a Gate.
func New(limiter RateLimiter, auth Authenticator, opts ...Option) *Gate {
	g := &Gate{
		limiter: limiter,
		auth:    auth,
		logger:  zap.NewNop(),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Middleware returns a net/http middleware enforcing p.
func (g *Gate) Middleware(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.Wrap(p, next)
	}
}

// Wrap guards next with p.
func (g *Gate) Wrap(p Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		data, ok := g.process(w, r, p)
		g.metrics.Observe(goGate.MetricGateLatency, time.Since(started))
		if !ok {
			return
		}
		g.metrics.Inc(goGate.MetricGateAllowed)

		ctx := WithRequestData(r.Context(), data)
		ctx = goGate.WithClientIP(ctx, data.Meta.IP)
		ctx = goGate.WithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// process writes the failure response itself and reports ok=false when the
// request must not reach the handler.
func (g *Gate) process(w http.ResponseWriter, r *http.Request, p Policy) (*RequestData, bool) {
	ctx := r.Context()

	rej, err := g.lint(p, r)
	if err != nil {
		g.fail(w, r, err)
		return nil, false
	}
	if rej != nil {
		g.metrics.Inc(goGate.MetricGateLintRejected)
		envelope.Fail(w, nil, http.StatusBadRequest, rej.note, rej.code)
		return nil, false
	}

	meta, err := g.limiter.RecordAndEvaluate(ctx, clientIP(r, g.trustProxy), p.RateLimit)
	if err != nil {
		g.fail(w, r, err)
		return nil, false
	}
	if p.RateLimit && meta.ShouldBlock() {
		g.metrics.Inc(goGate.MetricGateRateLimited)
		envelope.TooManyRequests(w, &meta)
		return nil, false
	}

	data := &RequestData{Meta: meta}
	if !p.RequireAuthHeader {
		return data, true
	}

	token, present := bearerToken(r.Header.Get("Authorization"))
	if !present {
		if p.RequireValidAuth {
			g.deny(w, &meta, envelope.CodeAuthorizationInvalid)
			return nil, false
		}
		return data, true
	}

	acc, err := g.auth.Authenticate(ctx, token)
	switch {
	case errors.Is(err, goGate.ErrAccountNotFound):
		if p.RequireValidAuth {
			g.deny(w, &meta, envelope.CodeAuthorizationInvalid, envelope.CodeAuthorizationRequired)
			return nil, false
		}
		return data, true
	case errors.Is(err, goGate.ErrTokenInvalid):
		g.deny(w, &meta, envelope.CodeAuthorizationInvalid)
		return nil, false
	case err != nil:
		g.fail(w, r, err)
		return nil, false
	}

	if p.RequireVerifiedEmail && !acc.EmailVerified {
		g.deny(w, &meta, envelope.CodeAuthorizationInvalid, envelope.CodeEmailNotVerified)
		return nil, false
	}

	data.Account = acc
	return data, true
}

func (g *Gate) deny(w http.ResponseWriter, meta *ratelimit.SessionMeta, codes ...envelope.ErrorCode) {
	g.metrics.Inc(goGate.MetricGateAuthRejected)
	envelope.Fail(w, meta, http.StatusUnauthorized, "", codes...)
}

func (g *Gate) fail(w http.ResponseWriter, r *http.Request, err error) {
	var be *bodyError
	if errors.As(err, &be) {
		g.metrics.Inc(goGate.MetricGateLintRejected)
		envelope.Fail(w, nil, http.StatusBadRequest, be.Error(), envelope.CodeBadRequest)
		return
	}

	g.metrics.Inc(goGate.MetricGateInternalError)
	g.logger.Error("request gate failed",
		zap.String("error_id", uuid.NewString()),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	envelope.Fail(w, nil, http.StatusInternalServerError, "", envelope.CodeInternalError)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
