package password

import (
	"errors"
	"fmt"
)

// Supported algorithm identifiers for [New].
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// DefaultMaxInputBytes bounds the input accepted by Hash and Verify when
// a config leaves the limit at zero.
const DefaultMaxInputBytes = 1024

var (
	// ErrInputTooLong is returned when an input exceeds the configured byte limit.
	ErrInputTooLong = errors.New("password input exceeds maximum length")
	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Hasher hashes an input into a self-describing salted string and verifies
// plaintext against such a string.
type Hasher interface {
	Hash(input string) (string, error)
	Verify(input, encoded string) (bool, error)
}

// Options selects and parameterizes a [Hasher].
type Options struct {
	Algorithm string
	Argon2    Config
	Bcrypt    BcryptConfig
}

// New builds the hasher named by opts.Algorithm. An empty algorithm selects argon2id.
func New(opts Options) (Hasher, error) {
	switch opts.Algorithm {
	case "", AlgorithmArgon2id:
		return NewArgon2(opts.Argon2)
	case AlgorithmBcrypt:
		return NewBcrypt(opts.Bcrypt)
	default:
		return nil, fmt.Errorf("unsupported password algorithm %q", opts.Algorithm)
	}
}

func maxBytes(limit int) int {
	if limit <= 0 {
		return DefaultMaxInputBytes
	}
	return limit
}
