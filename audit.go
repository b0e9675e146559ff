package goGate

import (
	"io"

	"github.com/MrEthical07/goGate/internal/audit"
	"go.uber.org/zap"
)

// AuditEvent is one account lifecycle record.
type AuditEvent = audit.Event

// AuditSink receives audit events from the engine's dispatcher.
type AuditSink = audit.Sink

// NoOpSink drops every event.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers events into a channel, mostly for tests.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// ZapSink logs events through a zap logger.
type ZapSink = audit.ZapSink

func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

func NewZapSink(log *zap.Logger) *ZapSink {
	return audit.NewZapSink(log)
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *audit.Dispatcher {
	return audit.NewDispatcher(audit.Config{
		Enabled:     cfg.Enabled,
		BufferSize:  cfg.BufferSize,
		DropIfFull:  cfg.DropIfFull,
		SinkTimeout: cfg.SinkTimeout,
	}, sink)
}
