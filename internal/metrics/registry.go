package metrics

import (
	"sync/atomic"
	"time"
)

const (
	// BucketCount is the number of latency buckets per histogram.
	BucketCount   = 8
	cacheLineSize = 64
)

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

type histogram struct {
	buckets [BucketCount]uint64
}

// Registry stores a fixed number of counters and histograms.
type Registry struct {
	enabled    bool
	latency    bool
	counters   []paddedCounter
	histograms []histogram
}

// NewRegistry allocates size counter slots. Histograms are only recorded when
// latency is true.
func NewRegistry(size int, enabled, latency bool) *Registry {
	if size < 0 {
		size = 0
	}
	r := &Registry{
		enabled:  enabled,
		latency:  enabled && latency,
		counters: make([]paddedCounter, size),
	}
	if r.latency {
		r.histograms = make([]histogram, size)
	}
	return r
}

func (r *Registry) Enabled() bool {
	return r != nil && r.enabled
}

func (r *Registry) LatencyEnabled() bool {
	return r != nil && r.latency
}

func (r *Registry) Inc(id int) {
	if r == nil || !r.enabled || id < 0 || id >= len(r.counters) {
		return
	}
	atomic.AddUint64(&r.counters[id].value, 1)
}

func (r *Registry) Observe(id int, d time.Duration) {
	if r == nil || !r.latency || id < 0 || id >= len(r.histograms) {
		return
	}
	atomic.AddUint64(&r.histograms[id].buckets[BucketIndex(d)], 1)
}

func (r *Registry) Value(id int) uint64 {
	if r == nil || id < 0 || id >= len(r.counters) {
		return 0
	}
	return atomic.LoadUint64(&r.counters[id].value)
}

// Buckets returns a copy of the non-cumulative bucket counts for id, or nil
// when latency recording is off.
func (r *Registry) Buckets(id int) []uint64 {
	if r == nil || !r.latency || id < 0 || id >= len(r.histograms) {
		return nil
	}
	out := make([]uint64, BucketCount)
	for i := range out {
		out[i] = atomic.LoadUint64(&r.histograms[id].buckets[i])
	}
	return out
}

// BucketIndex maps a duration onto the fixed bucket layout.
func BucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
