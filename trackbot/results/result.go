package results

import (
	"log/slog"
)

// Result is the single outcome contract shared by the persistence layer,
// the services and the tracking engine. Nothing in those layers panics or
// returns a bare error across its boundary; callers branch on Success and
// re-code failures for their own vocabulary.
type Result[T any] struct {
	Success bool
	Code    string
	Message string
	Data    T
	Error   string
}

// Ok builds a success result carrying a payload.
func Ok[T any](code, message string, data T) Result[T] {
	return Result[T]{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// OkMsg builds a success result with no payload of interest.
func OkMsg[T any](code, message string) Result[T] {
	return Result[T]{
		Success: true,
		Code:    code,
		Message: message,
	}
}

// Fail builds a failure result and logs it immediately, so that a failure
// is observable even when the caller discards the diagnostic detail.
// Error is diagnostic-only and must never be shown to the user; Message is
// the user-facing text.
func Fail[T any](code, message, errDetail string) Result[T] {
	slog.Error("Operation failed",
		slog.String("type", "error"),
		slog.String("code", code),
		slog.String("message", message),
		slog.String("error", errDetail),
	)
	return Result[T]{
		Success: false,
		Code:    code,
		Message: message,
		Error:   errDetail,
	}
}

// Recode passes a failure up one layer under a new code, preserving the
// original message and diagnostic. The new failure is not re-logged; the
// construction site already logged it.
func Recode[T, U any](code string, from Result[U]) Result[T] {
	return Result[T]{
		Success: false,
		Code:    code,
		Message: from.Message,
		Error:   from.Error,
	}
}

// Common codes shared across layers. Layer-specific codes live at their
// construction sites.
const (
	CodeDBConnectionFailed = "DB_CONNECTION_FAILED"
)
