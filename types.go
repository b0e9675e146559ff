package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/account"
)

// Mailer delivers one-time codes to the account's email address. The mail
// package provides the HTML implementation.
type Mailer interface {
	SendVerification(ctx context.Context, acc *account.Account, code string) error
	SendPasswordReset(ctx context.Context, acc *account.Account, code string) error
}

// AccountStore persists accounts. See account.MemoryStore and
// account.PostgresStore.
type AccountStore = account.Store

type discardMailer struct{}

func (discardMailer) SendVerification(context.Context, *account.Account, string) error  { return nil }
func (discardMailer) SendPasswordReset(context.Context, *account.Account, string) error { return nil }
