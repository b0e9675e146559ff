// Package gate is the per-route preprocessing pipeline that runs before a
// handler: structural lint, rate limiting, then bearer-token resolution.
//
// # Order
//
// The first failing stage decides the response:
//
//  1. lint: missing query parameter, missing header, missing body field,
//     then query, header and body values that fail their pattern (400)
//  2. rate limit (429 TOO_MANY_REQUESTS)
//  3. auth, when the policy asks for it (401)
//
// On success the resolved account (possibly nil) and the caller's
// [ratelimit.SessionMeta] are attached to the request context; read them
// with [FromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into limiter and authenticator
// calls. Token validity, account lookup and counting live behind those
// interfaces.
//
// # What this package must NOT do
//
//   - Parse or validate token challenges directly.
//   - Leak internal error detail in a response body.
package gate
