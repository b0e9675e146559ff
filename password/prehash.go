package password

import (
	"crypto/sha256"
	"encoding/hex"
)

// Prehashed feeds a hex SHA-256 digest of every input to the wrapped
// hasher. The digest is 64 bytes, inside bcrypt's 72-byte limit, so long
// inputs neither fail nor collide on a shared prefix.
type Prehashed struct {
	Hasher
}

func (p Prehashed) Hash(input string) (string, error) {
	return p.Hasher.Hash(Digest(input))
}

func (p Prehashed) Verify(input, encoded string) (bool, error) {
	return p.Hasher.Verify(Digest(input), encoded)
}

// Digest returns the hex SHA-256 of input.
func Digest(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ForLongInput returns h wrapped in Prehashed when h cannot take inputs past
// a short fixed length (bcrypt), and h itself otherwise.
func ForLongInput(h Hasher) Hasher {
	if _, ok := h.(*Bcrypt); ok {
		return Prehashed{Hasher: h}
	}
	return h
}
