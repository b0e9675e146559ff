package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// CodeAlphabet is the 62-symbol alphabet used for identifiers and one-time codes.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var alphabetSize = big.NewInt(int64(len(CodeAlphabet)))

// NewCode returns length symbols drawn uniformly from CodeAlphabet using crypto/rand.
func NewCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("code length must be positive")
	}

	var b strings.Builder
	b.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b.WriteByte(CodeAlphabet[n.Int64()])
	}

	return b.String(), nil
}
