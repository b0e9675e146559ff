package goGate

import (
	"errors"

	"github.com/MrEthical07/goGate/password"
)

// Version is the public API version served under /public/v3.
const Version = "3.0.0"

var (
	// ErrEngineNotReady is returned when the engine is missing a collaborator.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrEmailTaken is returned by CreateAccount when the email is already registered.
	ErrEmailTaken = errors.New("an account already exists with that email")
	// ErrVerificationIDInvalid covers a wrong code and an already verified account.
	ErrVerificationIDInvalid = errors.New("email verification id invalid")
	// ErrResetIDInvalid is returned when the reset code does not match.
	ErrResetIDInvalid = errors.New("password reset id invalid")
	// ErrResetIDExpired is returned when no reset is outstanding or it is older
	// than the reset window.
	ErrResetIDExpired = errors.New("password reset id expired")
	// ErrAccountNotFound is returned by Authenticate when the token names an
	// unknown account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTokenInvalid is returned by Authenticate for malformed or stale tokens.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrPasswordTooLong is returned when a password exceeds the configured
	// hasher input limit.
	ErrPasswordTooLong = password.ErrInputTooLong
)
