package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by lookups that match no account.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = errors.New("account email already registered")
	// ErrExists is returned by Create when the account id is already present.
	ErrExists = errors.New("account already exists")
)

// Store persists accounts. Implementations must be safe for concurrent use.
type Store interface {
	// Create inserts a new account, failing with ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, acc *Account) error
	// Update writes every mutable field of an existing account, keyed by id.
	Update(ctx context.Context, acc *Account) error
	FindByID(ctx context.Context, accountID string) (*Account, error)
	// FindByEmail expects an address already passed through NormalizeEmail.
	FindByEmail(ctx context.Context, email string) (*Account, error)
}
