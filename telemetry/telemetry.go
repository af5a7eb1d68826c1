// Package telemetry carries the logging, metrics and tracing contracts used by
// the synthesizer and the registry, with clue/OpenTelemetry adapters and no-op
// variants for tests.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger captures structured logging. Implementations typically delegate to
// clue; the interface stays small so tests can provide lightweight stubs.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics exposes counter and timer helpers.
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, duration time.Duration, tags ...string)
}

// Tracer abstracts span creation.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
}

// Span is an in-flight tracing span.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// Metric names.
const (
	MetricRegistered = "polyskema.registry.registered"
	MetricSkipped    = "polyskema.registry.skipped"
	MetricBuildTime  = "polyskema.registry.build_seconds"
	MetricCacheHit   = "polyskema.synth.cache_hit"
	MetricCacheMiss  = "polyskema.synth.cache_miss"
)
