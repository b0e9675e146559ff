// Package internal holds the crypto/rand code generator shared by the
// credential package.
//
// Sub-packages:
//
//   - audit: buffered event dispatch and sinks
//   - dbregistry: named Postgres handles opened lazily from one DSN
//   - flows: account operations as functions over injected dependencies
//   - metrics: padded atomic counters and fixed-bucket latency histograms
//   - rate: Redis sorted-set request windows
package internal
