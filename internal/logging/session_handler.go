package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID tags every line written during a diagnostic run.
const FieldSessionID = "session_id"

// sessionHandler stamps a fixed session attribute onto each record it hands
// to next.
type sessionHandler struct {
	next  slog.Handler
	stamp slog.Attr
}

// NewSessionHandler wraps base so every record carries session_id. A nil
// base discards everything.
func NewSessionHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return sessionHandler{next: base, stamp: slog.String(FieldSessionID, sessionID)}
}

func (h sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h sessionHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(h.stamp)
	return h.next.Handle(ctx, record)
}

func (h sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.next = h.next.WithAttrs(attrs)
	return h
}

func (h sessionHandler) WithGroup(name string) slog.Handler {
	h.next = h.next.WithGroup(name)
	return h
}
