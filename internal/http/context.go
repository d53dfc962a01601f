package http

import (
	"context"
	"log/slog"

	"github.com/example/nazolog/internal/logging"
)

type contextKey string

const (
	eventIDContextKey  contextKey = "event_id"
	recordIDContextKey contextKey = "record_id"
)

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithEventID injects the event identifier resolved from the request path.
func ContextWithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDContextKey, eventID)
}

// EventIDFromContext extracts an event identifier previously associated with the context.
func EventIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(eventIDContextKey).(string)
	return id, ok
}

// ContextWithRecordID injects the record identifier resolved from the request path.
func ContextWithRecordID(ctx context.Context, recordID string) context.Context {
	return context.WithValue(ctx, recordIDContextKey, recordID)
}

// RecordIDFromContext extracts a record identifier previously associated with the context.
func RecordIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(recordIDContextKey).(string)
	return id, ok
}
