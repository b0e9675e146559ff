// Package metrics provides lock-free counters and latency histograms indexed
// by small integer IDs.
//
// Counters live in cache-line-padded uint64 slots and are incremented with
// [sync/atomic.AddUint64]. Histograms use 8 fixed buckets (<=5ms ... +Inf).
// The write path does not allocate.
//
// The root package assigns meaning to IDs; exporters under metrics/export read
// snapshots. This package performs no I/O and keeps no global registry.
package metrics
