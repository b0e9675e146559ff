// Package audit delivers account lifecycle events to pluggable sinks.
//
// The engine decides which events to emit; this package only buffers them in
// a [Dispatcher] and hands them to a [Sink] (channel, JSON lines, zap, no-op).
// It imports no sibling package.
package audit
