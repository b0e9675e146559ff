// Package account defines the persisted account record and the stores that
// hold it.
//
// # Architecture boundaries
//
// Stores persist and look up records. Lifecycle rules (verification, reset,
// login) live in the goGate engine; a store never decides whether a
// transition is allowed. Stores do enforce email uniqueness: [Store.Create]
// returns [ErrEmailTaken] when another account already owns the address.
//
// # What this package must NOT do
//
//   - Hash passwords or generate codes.
//   - Serialize password hashes or one-time codes to JSON.
package account
