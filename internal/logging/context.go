package logging

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const loggerKey contextKey = "logger"

// GenerateTraceID generates a new trace ID for a single Generate call.
func GenerateTraceID() string {
	return uuid.NewString()
}

// FromContext retrieves the logger stashed in ctx, or Default() if none.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return Default()
}

// NewContext returns a context carrying the given logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithTraceContext stamps a fresh trace ID into ctx and returns a logger
// tagged with it — the orchestrator calls this once per Generate call.
func WithTraceContext(ctx context.Context) (context.Context, *Logger) {
	traceID := GenerateTraceID()
	l := Default().WithTraceID(traceID)
	return NewContext(ctx, l), l
}

// SignalContext creates a logger context for trading-signal diagnostics.
func SignalContext(symbol, timeframe string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"symbol":    symbol,
		"timeframe": timeframe,
	}).WithComponent("signal")
}

// PipelineContext creates a logger context for one pipeline stage.
func PipelineContext(symbol, timeframe string, stage string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"symbol":    symbol,
		"timeframe": timeframe,
		"stage":     stage,
	}).WithComponent("pipeline")
}
