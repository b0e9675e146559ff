package account

import "strings"

// Account is a persisted user identity.
//
// AccountID, Email and CreationTimestamp never change after creation.
// Timestamps are milliseconds since the Unix epoch.
type Account struct {
	AccountID         string `json:"accountId"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	EmailVerified     bool   `json:"emailVerified"`
	IsBanned          bool   `json:"isBanned"`
	CreationTimestamp int64  `json:"creationTimestamp"`

	PasswordHash          string `json:"-"`
	EmailVerificationID   string `json:"-"`
	ResetRequestID        string `json:"-"`
	ResetRequestTimestamp int64  `json:"-"`
}

// Clone returns a copy that shares no state with a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// NormalizeEmail lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultName returns the local part of email, used when no name is given.
func DefaultName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
