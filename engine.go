package goGate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/credential"
	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/password"
	"github.com/MrEthical07/goGate/ratelimit"
	"go.uber.org/zap"
)

// Engine runs the account lifecycle: registration, email verification,
// password reset, login and bearer token checks. It is safe for concurrent
// use once built.
type Engine struct {
	config  Config
	store   account.Store
	hasher  password.Hasher
	codec   *credential.Codec
	mailer  Mailer
	limiter *ratelimit.Limiter
	audit   *audit.Dispatcher
	metrics *Metrics
	log     *zap.Logger
	clock   func() time.Time
}

// Close flushes pending audit events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports audit events lost to dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the current counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Metrics exposes the counter set shared with the gate.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

// RateLimiter returns the per-IP limiter built from Config.RateLimit.
func (e *Engine) RateLimiter() *ratelimit.Limiter {
	if e == nil {
		return nil
	}
	return e.limiter
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// LookupAccountByID returns (nil, nil) when no account has that id.
func (e *Engine) LookupAccountByID(ctx context.Context, accountID string) (*account.Account, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	acc, err := e.store.FindByID(ctx, accountID)
	if errors.Is(err, account.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return acc, nil
}

// LookupAccountByEmail lowercases email before the lookup and returns
// (nil, nil) when nothing matches.
func (e *Engine) LookupAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	acc, err := e.store.FindByEmail(ctx, account.NormalizeEmail(email))
	if errors.Is(err, account.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return acc, nil
}

// TryLogin reports whether password matches. Banned accounts always fail.
func (e *Engine) TryLogin(ctx context.Context, acc *account.Account, password string) (bool, error) {
	if acc == nil {
		return false, nil
	}
	return flows.RunTryLogin(ctx, acc, password, e.accountDeps())
}

// IssueToken mints "accountId:challenge" bound to the current password hash.
// Changing the password invalidates every previously issued token.
func (e *Engine) IssueToken(acc *account.Account) (string, error) {
	if acc == nil {
		return "", ErrAccountNotFound
	}
	return flows.RunIssueToken(acc, e.accountDeps())
}

// IsTokenValid reports whether token belongs to acc and still matches its
// password hash.
func (e *Engine) IsTokenValid(acc *account.Account, token string) bool {
	return flows.RunIsTokenValid(acc, token, e.accountDeps())
}

// Authenticate resolves a bearer token. The text before the first ":" (the
// whole token when there is none) names the account. It returns
// ErrAccountNotFound when no account has that id and ErrTokenInvalid when
// the rest of the token does not match the account's current password.
func (e *Engine) Authenticate(ctx context.Context, token string) (*account.Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	return flows.RunAuthenticate(ctx, token, e.accountDeps())
}

// SetBanned sets the administrative ban flag on the account with accountID.
func (e *Engine) SetBanned(ctx context.Context, accountID string, banned bool) error {
	acc, err := e.LookupAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrAccountNotFound
	}
	return flows.RunSetBanned(ctx, acc, banned, e.accountDeps())
}

func (e *Engine) accountDeps() flows.AccountDeps {
	deps := flows.AccountDeps{
		ResetTTL:       e.config.Account.ResetTTL,
		Now:            e.now,
		NewAccountID:   credential.NewAccountID,
		NewOneTimeCode: credential.NewOneTimeCode,
		SplitToken:     credential.SplitToken,
		TokenAccountID: credential.AccountIDOf,
		Store:          e.store,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit: e.emitAudit,
		Metrics: flows.AccountMetrics{
			AccountCreated:           int(MetricAccountCreated),
			AccountCreationDuplicate: int(MetricAccountCreationDuplicate),
			EmailVerificationSent:    int(MetricEmailVerificationSent),
			EmailVerificationSuccess: int(MetricEmailVerificationSuccess),
			EmailVerificationFailure: int(MetricEmailVerificationFailure),
			PasswordResetRequest:     int(MetricPasswordResetRequest),
			PasswordResetSuccess:     int(MetricPasswordResetSuccess),
			PasswordResetInvalid:     int(MetricPasswordResetInvalid),
			PasswordResetExpired:     int(MetricPasswordResetExpired),
			LoginSuccess:             int(MetricLoginSuccess),
			LoginFailure:             int(MetricLoginFailure),
			TokenIssued:              int(MetricTokenIssued),
			TokenRejected:            int(MetricTokenRejected),
		},
		Events: flows.AccountEvents{
			AccountCreated:        auditEventAccountCreated,
			EmailVerificationSent: auditEventEmailVerificationSent,
			EmailVerified:         auditEventEmailVerified,
			PasswordResetRequest:  auditEventPasswordResetRequested,
			PasswordReset:         auditEventPasswordReset,
			Login:                 auditEventLogin,
			BanChanged:            auditEventBanChanged,
		},
		Errors: flows.AccountErrors{
			EngineNotReady:        ErrEngineNotReady,
			EmailTaken:            ErrEmailTaken,
			AccountNotFound:       ErrAccountNotFound,
			TokenInvalid:          ErrTokenInvalid,
			VerificationIDInvalid: ErrVerificationIDInvalid,
			ResetIDInvalid:        ErrResetIDInvalid,
			ResetIDExpired:        ErrResetIDExpired,
		},
	}
	if e.hasher != nil {
		deps.HashPassword = e.hasher.Hash
		deps.VerifyPassword = e.hasher.Verify
	}
	if e.codec != nil {
		deps.IssueToken = e.codec.IssueToken
		deps.ValidateChallenge = e.codec.ValidateChallenge
	}
	if e.mailer != nil {
		deps.SendVerification = e.sendVerification
		deps.SendPasswordReset = e.sendPasswordReset
	}
	return deps
}

func (e *Engine) sendVerification(ctx context.Context, acc *account.Account, code string) {
	if err := e.mailer.SendVerification(ctx, acc, code); err != nil {
		e.metricInc(MetricMailFailure)
		e.log.Error("send verification mail", zap.String("account_id", acc.AccountID), zap.Error(err))
	}
}

func (e *Engine) sendPasswordReset(ctx context.Context, acc *account.Account, code string) {
	if err := e.mailer.SendPasswordReset(ctx, acc, code); err != nil {
		e.metricInc(MetricMailFailure)
		e.log.Error("send password reset mail", zap.String("account_id", acc.AccountID), zap.Error(err))
	}
}
