package flows

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goGate/account"
)

// RunInitiatePasswordReset issues a reset code, replacing any pending one.
func RunInitiatePasswordReset(ctx context.Context, acc *account.Account, deps AccountDeps) error {
	normalizeAccountDeps(&deps)
	if !ready(&deps) {
		return deps.Errors.EngineNotReady
	}

	code, err := deps.NewOneTimeCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	acc.ResetRequestID = code
	acc.ResetRequestTimestamp = deps.Now().UnixMilli()
	if err := deps.Store.Update(ctx, acc); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	deps.SendPasswordReset(ctx, acc, code)
	deps.MetricInc(deps.Metrics.PasswordResetRequest)
	deps.EmitAudit(ctx, deps.Events.PasswordResetRequest, true, acc.AccountID, nil, nil)
	return nil
}

// RunResetPassword consumes the reset code and sets a new password. Expiry
// is checked before the code itself.
func RunResetPassword(ctx context.Context, acc *account.Account, code, newPassword string, deps AccountDeps) error {
	normalizeAccountDeps(&deps)
	if !ready(&deps) {
		return deps.Errors.EngineNotReady
	}

	elapsed := deps.Now().UnixMilli() - acc.ResetRequestTimestamp
	if acc.ResetRequestTimestamp == 0 || elapsed > deps.ResetTTL.Milliseconds() {
		deps.MetricInc(deps.Metrics.PasswordResetExpired)
		deps.EmitAudit(ctx, deps.Events.PasswordReset, false, acc.AccountID, deps.Errors.ResetIDExpired, nil)
		return deps.Errors.ResetIDExpired
	}
	if !codesEqual(acc.ResetRequestID, code) {
		deps.MetricInc(deps.Metrics.PasswordResetInvalid)
		deps.EmitAudit(ctx, deps.Events.PasswordReset, false, acc.AccountID, deps.Errors.ResetIDInvalid, nil)
		return deps.Errors.ResetIDInvalid
	}

	hash, err := deps.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	acc.PasswordHash = hash
	acc.ResetRequestID = ""
	acc.ResetRequestTimestamp = 0
	if err := deps.Store.Update(ctx, acc); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	deps.MetricInc(deps.Metrics.PasswordResetSuccess)
	deps.EmitAudit(ctx, deps.Events.PasswordReset, true, acc.AccountID, nil, nil)
	return nil
}
