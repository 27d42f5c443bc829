package common

import "fmt"

// ExitError carries the exit code of the fleet process to main.
type ExitError struct {
	Err      error
	ExitCode int
}

// NewExitError returns an error exiting the process with the given code.
func NewExitError(err error, exitCode int) *ExitError {
	return &ExitError{Err: err, ExitCode: exitCode}
}

func (err *ExitError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("exit code %d", err.ExitCode)
	}

	return err.Err.Error()
}

func (err *ExitError) Unwrap() error {
	return err.Err
}

// ExitStatus returns the exit code of the fleet process.
func (err *ExitError) ExitStatus() (int, error) {
	return err.ExitCode, nil
}
