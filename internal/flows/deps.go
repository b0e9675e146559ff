package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goGate/account"
)

type AccountMetrics struct {
	AccountCreated           int
	AccountCreationDuplicate int
	EmailVerificationSent    int
	EmailVerificationSuccess int
	EmailVerificationFailure int
	PasswordResetRequest     int
	PasswordResetSuccess     int
	PasswordResetInvalid     int
	PasswordResetExpired     int
	LoginSuccess             int
	LoginFailure             int
	TokenIssued              int
	TokenRejected            int
}

type AccountEvents struct {
	AccountCreated        string
	EmailVerificationSent string
	EmailVerified         string
	PasswordResetRequest  string
	PasswordReset         string
	Login                 string
	BanChanged            string
}

type AccountErrors struct {
	EngineNotReady        error
	EmailTaken            error
	AccountNotFound       error
	TokenInvalid          error
	VerificationIDInvalid error
	ResetIDInvalid        error
	ResetIDExpired        error
}

// AccountDeps wires the account flows to their collaborators.
type AccountDeps struct {
	ResetTTL time.Duration

	Now               func() time.Time
	NewAccountID      func() (string, error)
	NewOneTimeCode    func() (string, error)
	HashPassword      func(string) (string, error)
	VerifyPassword    func(plain, hash string) (bool, error)
	IssueToken        func(accountID, passwordHash string) (string, error)
	ValidateChallenge func(challenge, passwordHash string) bool
	SplitToken        func(token string) (accountID, challenge string, ok bool)
	TokenAccountID    func(token string) string

	Store account.Store

	// Mail hand-off. Delivery failures are the caller's to report.
	SendVerification  func(ctx context.Context, acc *account.Account, code string)
	SendPasswordReset func(ctx context.Context, acc *account.Account, code string)

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, accountID string, err error, metadata func() map[string]string)

	Metrics AccountMetrics
	Events  AccountEvents
	Errors  AccountErrors
}

func normalizeAccountDeps(deps *AccountDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.SendVerification == nil {
		deps.SendVerification = func(context.Context, *account.Account, string) {}
	}
	if deps.SendPasswordReset == nil {
		deps.SendPasswordReset = func(context.Context, *account.Account, string) {}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
}

func ready(deps *AccountDeps) bool {
	return deps.Store != nil && deps.HashPassword != nil && deps.VerifyPassword != nil &&
		deps.NewOneTimeCode != nil && deps.NewAccountID != nil
}
