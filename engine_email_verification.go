package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/internal/flows"
)

// SendEmailVerification issues a fresh verification code and mails it. It
// reports false without side effects when the account is verified or banned.
func (e *Engine) SendEmailVerification(ctx context.Context, acc *account.Account) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	return flows.RunSendEmailVerification(ctx, acc, e.accountDeps())
}

// TryVerifyEmail marks the account verified when code matches the
// outstanding one. A second attempt returns ErrVerificationIDInvalid.
func (e *Engine) TryVerifyEmail(ctx context.Context, acc *account.Account, code string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunVerifyEmail(ctx, acc, code, e.accountDeps())
}
