// Package prometheus renders goGate metrics in the Prometheus text
// exposition format.
//
// Counters are named gogate_*_total. The gate latency histogram is
// gogate_gate_latency_seconds with fixed buckets from 5ms to 500ms.
// The exporter does not register with a global registry; mount Handler
// where the scraper can reach it.
package prometheus
