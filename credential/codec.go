package credential

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGate/password"
)

// Separator joins the account id and the challenge in a token, and the
// account id and the code in verification and reset links.
const Separator = ":"

// Codec issues and validates self-invalidating bearer tokens.
type Codec struct {
	hasher password.Hasher
}

// NewCodec binds a codec to h. Hashers with a short input limit (bcrypt)
// receive a SHA-256 digest of the password hash instead of the hash itself.
func NewCodec(h password.Hasher) *Codec {
	return &Codec{hasher: password.ForLongInput(h)}
}

// IssueToken builds a token for accountID bound to passwordHash.
func (c *Codec) IssueToken(accountID, passwordHash string) (string, error) {
	challenge, err := c.hasher.Hash(passwordHash)
	if err != nil {
		return "", fmt.Errorf("hash token challenge: %w", err)
	}
	return accountID + Separator + base64.URLEncoding.EncodeToString([]byte(challenge)), nil
}

// ValidateChallenge reports whether the encoded challenge was issued against
// currentPasswordHash. Any decode or hashing failure yields false.
func (c *Codec) ValidateChallenge(challenge, currentPasswordHash string) bool {
	if challenge == "" || currentPasswordHash == "" {
		return false
	}
	raw, err := base64.URLEncoding.DecodeString(challenge)
	if err != nil {
		return false
	}
	ok, err := c.hasher.Verify(currentPasswordHash, string(raw))
	return err == nil && ok
}

// SplitToken splits a token (or a verification/reset id) on its first separator.
// ok is false when the separator is missing or either side is empty.
func SplitToken(token string) (accountID, rest string, ok bool) {
	accountID, rest, found := strings.Cut(token, Separator)
	if !found || accountID == "" || rest == "" {
		return "", "", false
	}
	return accountID, rest, true
}

// AccountIDOf returns the lookup key of a bearer token: the text before the
// first separator, or the whole token when it has none.
func AccountIDOf(token string) string {
	accountID, _, _ := strings.Cut(token, Separator)
	return accountID
}

// JoinID builds the "<accountId>:<code>" identifier sent in email links.
func JoinID(accountID, code string) string {
	return accountID + Separator + code
}
