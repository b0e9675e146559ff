package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goGate/account"
)

// RunTryLogin checks a password. Banned accounts never log in.
func RunTryLogin(ctx context.Context, acc *account.Account, password string, deps AccountDeps) (bool, error) {
	normalizeAccountDeps(&deps)
	if deps.VerifyPassword == nil {
		return false, deps.Errors.EngineNotReady
	}

	ok := false
	if !acc.IsBanned {
		var err error
		ok, err = deps.VerifyPassword(password, acc.PasswordHash)
		if err != nil {
			return false, fmt.Errorf("verify password: %w", err)
		}
	}

	if ok {
		deps.MetricInc(deps.Metrics.LoginSuccess)
	} else {
		deps.MetricInc(deps.Metrics.LoginFailure)
	}
	deps.EmitAudit(ctx, deps.Events.Login, ok, acc.AccountID, nil, func() map[string]string {
		if acc.IsBanned {
			return map[string]string{"reason": "banned"}
		}
		return nil
	})
	return ok, nil
}

// RunIssueToken mints a bearer token bound to the current password hash.
func RunIssueToken(acc *account.Account, deps AccountDeps) (string, error) {
	normalizeAccountDeps(&deps)
	if deps.IssueToken == nil {
		return "", deps.Errors.EngineNotReady
	}
	token, err := deps.IssueToken(acc.AccountID, acc.PasswordHash)
	if err != nil {
		return "", err
	}
	deps.MetricInc(deps.Metrics.TokenIssued)
	return token, nil
}

// RunIsTokenValid reports whether token was issued for acc against its
// current password hash. Banned accounts hold no valid tokens.
func RunIsTokenValid(acc *account.Account, token string, deps AccountDeps) bool {
	if acc == nil || acc.IsBanned || deps.SplitToken == nil || deps.ValidateChallenge == nil {
		return false
	}
	id, challenge, ok := deps.SplitToken(token)
	if !ok || id != acc.AccountID {
		return false
	}
	return deps.ValidateChallenge(challenge, acc.PasswordHash)
}

// RunAuthenticate resolves a bearer token to its account. The account is
// looked up by the token's id prefix first, so an unknown id reports
// AccountNotFound even when the token has no challenge part.
func RunAuthenticate(ctx context.Context, token string, deps AccountDeps) (*account.Account, error) {
	normalizeAccountDeps(&deps)
	if deps.Store == nil || deps.SplitToken == nil || deps.TokenAccountID == nil {
		return nil, deps.Errors.EngineNotReady
	}

	id := deps.TokenAccountID(token)
	if id == "" {
		deps.MetricInc(deps.Metrics.TokenRejected)
		return nil, deps.Errors.AccountNotFound
	}

	acc, err := deps.Store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			deps.MetricInc(deps.Metrics.TokenRejected)
			return nil, deps.Errors.AccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if !RunIsTokenValid(acc, token, deps) {
		deps.MetricInc(deps.Metrics.TokenRejected)
		return nil, deps.Errors.TokenInvalid
	}
	return acc, nil
}
