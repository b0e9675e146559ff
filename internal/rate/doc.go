// Package rate provides the Redis primitives behind the per-IP sliding
// request window.
//
// # Window semantics
//
// Each IP owns one sorted set under "<prefix>:<ip>". Every counted request
// adds a member with a unique id scored by its insertion time in unix
// milliseconds. Counting uses ZCOUNT over an exclusive lower bound. Members
// older than the window are trimmed on insert and the whole key expires
// once the newest member has aged out.
//
// # What this package must NOT do
//
//   - Decide whether a request is blocked (that lives in ratelimit).
//   - Be imported outside the goGate module.
package rate
