// Package password implements salted adaptive hashing for account passwords
// and for the challenge embedded in bearer tokens.
//
// # Output format
//
// Argon2id hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Bcrypt hashes use the standard modular crypt format ($2a$/$2b$).
// Both carry their own salt, so hashing the same input twice yields
// different strings that both verify.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. It places no lower bound
// on input length; a single character is a valid input.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other goGate package.
//   - Log plaintext inputs or hash parameters at runtime.
package password
