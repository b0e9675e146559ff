// Package flows contains the account lifecycle orchestrators behind Engine.
//
// Each Run* function takes an [AccountDeps] value and performs one transition
// of the account state machine: creation, email verification, password
// reset, login and token checks. Flows never own resources; stores, hashers,
// mailers, audit and metrics are all reached through the deps struct.
//
// # Architecture boundaries
//
// Flows decide whether a transition is allowed and what the account looks
// like afterwards. Persistence goes through account.Store.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goGate (to avoid import cycles).
//   - Log. Failures surface as returned errors or audit events.
package flows
