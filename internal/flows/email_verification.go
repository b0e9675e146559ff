package flows

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/MrEthical07/goGate/account"
)

// RunSendEmailVerification issues a fresh verification code. It reports
// false without side effects when the account is verified or banned.
func RunSendEmailVerification(ctx context.Context, acc *account.Account, deps AccountDeps) (bool, error) {
	normalizeAccountDeps(&deps)
	if !ready(&deps) {
		return false, deps.Errors.EngineNotReady
	}
	if acc.EmailVerified || acc.IsBanned {
		return false, nil
	}

	code, err := deps.NewOneTimeCode()
	if err != nil {
		return false, fmt.Errorf("generate verification code: %w", err)
	}

	acc.EmailVerificationID = code
	if err := deps.Store.Update(ctx, acc); err != nil {
		return false, fmt.Errorf("update account: %w", err)
	}

	deps.SendVerification(ctx, acc, code)
	deps.MetricInc(deps.Metrics.EmailVerificationSent)
	deps.EmitAudit(ctx, deps.Events.EmailVerificationSent, true, acc.AccountID, nil, nil)
	return true, nil
}

// RunVerifyEmail consumes the verification code.
func RunVerifyEmail(ctx context.Context, acc *account.Account, code string, deps AccountDeps) error {
	normalizeAccountDeps(&deps)
	if !ready(&deps) {
		return deps.Errors.EngineNotReady
	}

	if acc.EmailVerified || !codesEqual(acc.EmailVerificationID, code) {
		deps.MetricInc(deps.Metrics.EmailVerificationFailure)
		deps.EmitAudit(ctx, deps.Events.EmailVerified, false, acc.AccountID, deps.Errors.VerificationIDInvalid, nil)
		return deps.Errors.VerificationIDInvalid
	}

	acc.EmailVerificationID = ""
	acc.EmailVerified = true
	if err := deps.Store.Update(ctx, acc); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	deps.MetricInc(deps.Metrics.EmailVerificationSuccess)
	deps.EmitAudit(ctx, deps.Events.EmailVerified, true, acc.AccountID, nil, nil)
	return nil
}

// codesEqual compares a stored code against a supplied one. An empty stored
// code never matches.
func codesEqual(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
