// Package log provides a leveled logger with structured logging support.
package log

import "context"

type contextKey byte

const loggerContextKey contextKey = iota

var (
	// std is the default logger.
	std = New()
)

// Default returns the standard logger.
// It is highly recommended not to use it to avoid conflicts in tests.
func Default() Logger {
	return std
}

// ContextWithLogger returns a new context with the given logger.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext returns the logger stored in the context, or the default logger.
func LoggerFromContext(ctx context.Context) Logger {
	if val := ctx.Value(loggerContextKey); val != nil {
		if logger, ok := val.(Logger); ok {
			return logger
		}
	}

	return std
}

// Debugf logs a message at level Debug on the standard logger.
func Debugf(format string, args ...any) {
	std.Debugf(format, args...)
}

// Infof logs a message at level Info on the standard logger.
func Infof(format string, args ...any) {
	std.Infof(format, args...)
}

// Warnf logs a message at level Warn on the standard logger.
func Warnf(format string, args ...any) {
	std.Warnf(format, args...)
}

// Errorf logs a message at level Error on the standard logger.
func Errorf(format string, args ...any) {
	std.Errorf(format, args...)
}
