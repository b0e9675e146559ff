package goGate

import (
	"time"

	"github.com/MrEthical07/goGate/internal/metrics"
)

// MetricID identifies one engine or gate counter.
type MetricID uint16

const (
	MetricAccountCreated MetricID = iota
	MetricAccountCreationDuplicate
	MetricEmailVerificationSent
	MetricEmailVerificationSuccess
	MetricEmailVerificationFailure
	MetricPasswordResetRequest
	MetricPasswordResetSuccess
	MetricPasswordResetInvalid
	MetricPasswordResetExpired
	MetricLoginSuccess
	MetricLoginFailure
	MetricTokenIssued
	MetricTokenRejected
	MetricMailFailure

	MetricGateAllowed
	MetricGateLintRejected
	MetricGateRateLimited
	MetricGateAuthRejected
	MetricGateInternalError
	// MetricGateLatency is the only histogram; its counter slot stays zero.
	MetricGateLatency
	metricIDCount
)

// Metrics holds the engine and gate counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	reg *metrics.Registry
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics allocates counters according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		reg: metrics.NewRegistry(int(metricIDCount), cfg.Enabled, cfg.EnableLatencyHistograms),
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.reg.Enabled()
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.reg.LatencyEnabled()
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil {
		return
	}
	m.reg.Inc(int(id))
}

// Observe records d into the histogram id. Only MetricGateLatency is a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || id != MetricGateLatency {
		return
	}
	m.reg.Observe(int(id), d)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil {
		return 0
	}
	return m.reg.Value(int(id))
}

// Snapshot copies every counter. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if !m.Enabled() {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricGateLatency {
			continue
		}
		s.Counters[id] = m.reg.Value(int(id))
	}
	if buckets := m.reg.Buckets(int(MetricGateLatency)); buckets != nil {
		s.Histograms[MetricGateLatency] = buckets
	}
	return s
}
