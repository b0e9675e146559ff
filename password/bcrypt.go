package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes; x/crypto rejects longer input outright.
const bcryptMaxInput = 72

// Work factor bounds accepted by NewBcrypt.
const (
	MinBcryptCost     = bcrypt.MinCost
	MaxBcryptCost     = bcrypt.MaxCost
	DefaultBcryptCost = bcrypt.DefaultCost
)

// BcryptConfig holds the bcrypt work factor.
type BcryptConfig struct {
	Cost int
}

// Bcrypt is a bcrypt [Hasher].
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher. A zero cost selects bcrypt.DefaultCost.
func NewBcrypt(cfg BcryptConfig) (*Bcrypt, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < MinBcryptCost || cost > MaxBcryptCost {
		return nil, fmt.Errorf("bcrypt cost must be within [%d, %d]", MinBcryptCost, MaxBcryptCost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash returns a bcrypt hash of input.
func (b *Bcrypt) Hash(input string) (string, error) {
	if len(input) > bcryptMaxInput {
		return "", ErrInputTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(input), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(out), nil
}

// Verify reports whether input matches encoded. A mismatch is not an error.
func (b *Bcrypt) Verify(input, encoded string) (bool, error) {
	if len(input) > bcryptMaxInput {
		return false, ErrInputTooLong
	}
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(input))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
