// Package otel publishes goGate metrics through an OpenTelemetry Meter.
//
// Each counter becomes an Int64ObservableCounter and each latency bucket an
// Int64ObservableGauge. A single callback reads one snapshot per collection.
// The caller owns the MeterProvider.
package otel
