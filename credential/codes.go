package credential

import "github.com/MrEthical07/goGate/internal"

const (
	// AccountIDLength is the length of an account identifier.
	AccountIDLength = 32
	// OneTimeCodeLength is the length of verification and reset codes.
	OneTimeCodeLength = 128
)

// GenerateCode returns length random symbols from [A-Za-z0-9].
func GenerateCode(length int) (string, error) {
	return internal.NewCode(length)
}

// NewAccountID returns a fresh 32-symbol account identifier.
func NewAccountID() (string, error) {
	return internal.NewCode(AccountIDLength)
}

// NewOneTimeCode returns a fresh 128-symbol verification or reset code.
func NewOneTimeCode() (string, error) {
	return internal.NewCode(OneTimeCodeLength)
}
