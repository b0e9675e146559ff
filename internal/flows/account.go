package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goGate/account"
)

type CreateAccountRequest struct {
	Name     string
	Email    string
	Password string
}

// RunCreateAccount allocates, hashes and persists a new unverified account
// with an outstanding verification code, then hands the code to the mailer.
func RunCreateAccount(ctx context.Context, req CreateAccountRequest, deps AccountDeps) (*account.Account, error) {
	normalizeAccountDeps(&deps)
	if !ready(&deps) {
		return nil, deps.Errors.EngineNotReady
	}

	email := account.NormalizeEmail(req.Email)
	name := req.Name
	if name == "" {
		name = account.DefaultName(email)
	}

	id, err := deps.NewAccountID()
	if err != nil {
		return nil, fmt.Errorf("generate account id: %w", err)
	}
	hash, err := deps.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := deps.NewOneTimeCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	acc := &account.Account{
		AccountID:           id,
		Email:               email,
		Name:                name,
		PasswordHash:        hash,
		CreationTimestamp:   deps.Now().UnixMilli(),
		EmailVerificationID: code,
	}

	if err := deps.Store.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			deps.MetricInc(deps.Metrics.AccountCreationDuplicate)
			deps.EmitAudit(ctx, deps.Events.AccountCreated, false, "", deps.Errors.EmailTaken, func() map[string]string {
				return map[string]string{"reason": "duplicate_email"}
			})
			return nil, deps.Errors.EmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	deps.MetricInc(deps.Metrics.AccountCreated)
	deps.EmitAudit(ctx, deps.Events.AccountCreated, true, acc.AccountID, nil, nil)

	deps.SendVerification(ctx, acc, code)
	deps.MetricInc(deps.Metrics.EmailVerificationSent)
	deps.EmitAudit(ctx, deps.Events.EmailVerificationSent, true, acc.AccountID, nil, nil)

	return acc, nil
}

// RunSetBanned flips the administrative ban flag.
func RunSetBanned(ctx context.Context, acc *account.Account, banned bool, deps AccountDeps) error {
	normalizeAccountDeps(&deps)
	if deps.Store == nil {
		return deps.Errors.EngineNotReady
	}
	if acc.IsBanned == banned {
		return nil
	}

	acc.IsBanned = banned
	if err := deps.Store.Update(ctx, acc); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	deps.EmitAudit(ctx, deps.Events.BanChanged, true, acc.AccountID, nil, func() map[string]string {
		if banned {
			return map[string]string{"banned": "true"}
		}
		return map[string]string{"banned": "false"}
	})
	return nil
}
