package log

import (
	"io"
)

// Option configures the logger.
type Option func(logger *logger)

// WithLevel sets the minimal level of the messages to output.
func WithLevel(level Level) Option {
	return func(logger *logger) {
		logger.Logger.SetLevel(level.ToLogrusLevel())
	}
}

// WithOutput sets the destination of the log output.
func WithOutput(output io.Writer) Option {
	return func(logger *logger) {
		logger.Logger.SetOutput(output)
	}
}

// WithFormatter sets the formatter of the log entries.
func WithFormatter(formatter Formatter) Option {
	return func(logger *logger) {
		logger.Logger.SetFormatter(&fromLogrusFormatter{Formatter: formatter})
	}
}
