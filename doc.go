// Package goGate implements email/password accounts and the request gate
// that fronts the public HTTP API.
//
// # Architecture
//
// The [Engine] orchestrates the account lifecycle (registration, email
// verification, password reset, login) over an account.Store and a Mailer.
// Bearer tokens are "accountId:challenge" where the challenge is a salted
// hash of the account's current password hash, so a password change
// invalidates every outstanding token without server-side sessions.
//
// Packages:
//
//   - credential: one-time codes and the bearer token codec
//   - password: argon2id and bcrypt hashers
//   - account: the Account model and its stores (memory, Postgres)
//   - ratelimit: per-IP sliding-window limiter over Redis or memory
//   - gate: net/http middleware enforcing lint, rate limit and auth policies
//   - envelope: the JSON response envelope and rate-limit headers
//   - mail: verification and reset mail composition and delivery
//   - api: the /public/v3 routes
//
// # Usage
//
//	engine, err := goGate.New().
//		WithConfig(goGate.DefaultConfig()).
//		WithRedis(rdb).
//		WithAccountStore(account.NewPostgresStore(db)).
//		WithMailer(composer).
//		Build()
//
// # What this package must NOT do
//
//   - Log or audit passwords, hashes, tokens or one-time codes.
//   - Depend on gate, api or any HTTP concern.
package goGate
