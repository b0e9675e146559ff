package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/internal/flows"
)

// CreateAccount registers a new unverified account and mails its
// verification link. The email is lowercased; a blank name defaults to the
// local part of the email. ErrEmailTaken is returned when the store already
// holds the email.
func (e *Engine) CreateAccount(ctx context.Context, name, email, password string) (*account.Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	return flows.RunCreateAccount(ctx, flows.CreateAccountRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, e.accountDeps())
}
