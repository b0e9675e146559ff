package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/internal/flows"
)

// InitiatePasswordReset replaces any outstanding reset code with a new one
// and mails the reset link.
func (e *Engine) InitiatePasswordReset(ctx context.Context, acc *account.Account) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunInitiatePasswordReset(ctx, acc, e.accountDeps())
}

// TryResetPassword sets a new password when code matches and the request is
// younger than Config.Account.ResetTTL. Expiry is checked before the code,
// so a stale request reports ErrResetIDExpired even with the right code.
func (e *Engine) TryResetPassword(ctx context.Context, acc *account.Account, code, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunResetPassword(ctx, acc, code, newPassword, e.accountDeps())
}
