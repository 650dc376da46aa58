// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// EditIDKey is the context key for the id of the edit being adjusted.
	EditIDKey ContextKey = "edit_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger

	// output is where InitLogger sends records.
	output io.Writer = os.Stderr
)

func init() {
	// Library default: text format, warnings and above
	InitLogger(LevelWarn, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// ParseLevel maps a config or flag value ("debug", "info", "warn", "error")
// to a Level. Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseFormat maps "json" or "text" to a Format. Anything else is text.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// SetOutput redirects the output of subsequent InitLogger calls.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	output = w
}

// InitLogger initializes the global logger with the specified level and format.
func InitLogger(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(handler)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// WithEditID adds an edit id to the context.
func WithEditID(ctx context.Context, editID string) context.Context {
	return context.WithValue(ctx, EditIDKey, editID)
}

// GetEditID retrieves the edit id from the context.
func GetEditID(ctx context.Context) string {
	if editID, ok := ctx.Value(EditIDKey).(string); ok {
		return editID
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if editID := GetEditID(ctx); editID != "" {
		logger = logger.With("edit_id", editID)
	}
	return logger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// DebugContext logs a debug message with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Debug(msg, args...)
}

// InfoContext logs an info message with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Info(msg, args...)
}

// WarnContext logs a warning message with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Warn(msg, args...)
}

// ErrorContext logs an error message with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Error(msg, args...)
}

// EditApplied logs a completed adjustment.
func EditApplied(ctx context.Context, kind string, paragraphs, segments int, args ...any) {
	allArgs := []any{
		"kind", kind,
		"paragraphs", paragraphs,
		"segments", segments,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Debug("edit_applied", allArgs...)
}

// AnnotationLoss logs an annotation that could not be carried across an edit.
func AnnotationLoss(ctx context.Context, elementType, path, reason string, args ...any) {
	allArgs := []any{
		"element_type", elementType,
		"path", path,
		"reason", reason,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Warn("annotation_loss", allArgs...)
}

// WordformDeleted logs an orphaned wordform removed by cleanup.
func WordformDeleted(ctx context.Context, form, ws string, args ...any) {
	allArgs := []any{
		"form", form,
		"ws", ws,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("wordform_deleted", allArgs...)
}
