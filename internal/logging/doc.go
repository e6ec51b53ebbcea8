// Package logging assembles the structured slog loggers used across sortbox.
//
// It owns the console and JSON handlers, resolves the "auto" format against
// the controlling terminal, and exposes context-aware helpers so dispatch code
// tags every line with its dispatch ID and item. WarnWithContext and
// ErrorWithContext enforce the event_type, error_hint and impact keys on
// anything above info. The package also carries the tee and session handlers
// used by diagnostic runs and the retention sweep for per-run log files.
package logging
