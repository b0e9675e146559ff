// Package credential generates account identifiers and one-time codes and
// issues the stateless bearer tokens that authenticate API calls.
//
// # Token format
//
//	<accountId>:<base64url(hash(passwordHash))>
//
// The token never stores the password hash itself. It carries a salted hash
// of it, so a token validates only while the account's password hash is the
// one it was issued against. Changing the password invalidates every token
// issued before the change, with no revocation list.
//
// # What this package must NOT do
//
//   - Look up accounts. Callers resolve the account id and pass the current hash.
//   - Treat malformed input as anything but an invalid token.
package credential
