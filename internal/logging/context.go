package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldDispatchID correlates every line emitted by one dispatch pass.
	FieldDispatchID = "dispatch_id"
	// FieldItem is the watch-dir entry being classified or relocated.
	FieldItem        = "item"
	FieldCategory    = "category"
	FieldDestination = "destination"
	// FieldEventType names what happened in machine-friendly form.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries failure.Kind for the error attached to a line.
	FieldErrorKind = "error_kind"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type ctxKey int

const (
	dispatchIDKey ctxKey = iota
	itemKey
)

// WithDispatchID stamps a dispatch correlation ID onto ctx.
func WithDispatchID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, dispatchIDKey, id)
}

// DispatchIDFromContext returns the dispatch ID stamped by WithDispatchID.
func DispatchIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(dispatchIDKey).(string)
	return id, ok && id != ""
}

// WithItem records the entry currently being handled.
func WithItem(ctx context.Context, path string) context.Context {
	if strings.TrimSpace(path) == "" {
		return ctx
	}
	return context.WithValue(ctx, itemKey, path)
}

// ItemFromContext returns the entry recorded by WithItem.
func ItemFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	item, ok := ctx.Value(itemKey).(string)
	return item, ok && item != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := DispatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDispatchID, id))
	}
	if item, ok := ItemFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldItem, item))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
