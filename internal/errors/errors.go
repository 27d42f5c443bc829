// Package errors contains helper functions for wrapping errors with stack traces, collecting
// multiple errors, and panic recovery.
package errors

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New creates a new error with a stack trace attached. If the given value already carries a
// stack trace, it is returned unchanged. Passing nil returns nil.
func New(val any) error {
	if val == nil {
		return nil
	}

	return newWithSkip(2, val)
}

// Errorf creates a new error from the format specifier and wraps it with a stack trace.
func Errorf(format string, vals ...any) error {
	return newWithSkip(2, fmt.Errorf(format, vals...)) //nolint:err113
}

// WithStackTrace is an alias for New kept for call sites that wrap an existing error.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}

	return newWithSkip(2, err)
}

func newWithSkip(skip int, val any) error {
	if err, ok := val.(error); ok && ContainsStackTrace(err) {
		return err
	}

	return goerrors.Wrap(val, skip)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// ErrorStack returns the stack traces of the error and all its wrapped errors, if any.
func ErrorStack(err error) string {
	var stack string

	for _, err := range UnwrapMultiErrors(err) {
		for {
			if err, ok := err.(interface{ ErrorStack() string }); ok {
				stack += err.ErrorStack()
			}

			if err = errors.Unwrap(err); err == nil {
				break
			}
		}
	}

	return stack
}

// ContainsStackTrace returns true if the given error already contains a stack trace.
func ContainsStackTrace(err error) bool {
	for _, err := range UnwrapMultiErrors(err) {
		for {
			if _, ok := err.(interface{ ErrorStack() string }); ok {
				return true
			}

			if err = errors.Unwrap(err); err == nil {
				break
			}
		}
	}

	return false
}

// IsContextCanceled returns true if the error was caused by `context.Canceled`.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Recover tries to recover from panics, and if it succeeds, calls the given onPanic function with an error that
// explains the cause of the panic. This function should only be called from a defer statement.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, isError := rec.(error)
		if !isError {
			err = fmt.Errorf("%v", rec) //nolint:err113
		}

		onPanic(New(err))
	}
}

// UnwrapMultiErrors unwraps all nested multierrors into an error slice.
func UnwrapMultiErrors(err error) []error {
	errs := []error{err}

	for index := 0; index < len(errs); index++ {
		err := errs[index]

		for {
			if err, ok := err.(interface{ Unwrap() []error }); ok {
				errs = append(errs[:index], errs[index+1:]...)
				index--

				errs = append(errs, err.Unwrap()...)

				break
			}

			if err = errors.Unwrap(err); err == nil {
				break
			}
		}
	}

	return errs
}
