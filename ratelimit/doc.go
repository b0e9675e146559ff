// Package ratelimit enforces a per-IP sliding-window request quota.
//
// Every counted request is recorded with its arrival time. A request is
// evaluated by counting the caller's records inside the trailing window,
// including itself, and subtracting that from the quota. A negative
// remainder blocks the request.
//
// The [UnknownIP] sentinel marks requests whose client address could not be
// determined. It is never recorded and never blocked.
//
// # What this package must NOT do
//
//   - Write HTTP responses. Callers translate [SessionMeta] into headers.
//   - Retry or time out store calls on its own.
package ratelimit
