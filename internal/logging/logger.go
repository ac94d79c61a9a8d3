// Package logging is the structured logger the attachment store writes
// through. Services depend on the Logger interface; the process picks the
// sink (JSON on the server, stderr for attachctl) via the slog adapter.
package logging

import "context"

// Logger is a context-aware, structured logger. Args are key/value pairs:
//
//	log.Info(ctx, "attachment payload not removed", "id", a.ID, "path", path)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)

	// Error is reserved for failures an operator has to act on, such as a
	// row delete that exhausted its retries.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that tags every record, e.g. with
	// "module", "attachments".
	With(args ...any) Logger
}
