package runner

import (
	"fmt"
	"strings"
)

// NoProjectsAfterFilterError is returned when the filters reject every discovered project.
type NoProjectsAfterFilterError struct {
	Discovered int
}

func (err NoProjectsAfterFilterError) Error() string {
	return fmt.Sprintf("none of the %d discovered projects matched the filters", err.Discovered)
}

// UnknownCommandError is returned for a command the controller cannot run.
type UnknownCommandError struct {
	Command string
}

func (err UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", err.Command)
}

// OperationsFailedError is returned when one or more operations failed.
type OperationsFailedError struct {
	Projects []string
}

func (err OperationsFailedError) Error() string {
	return fmt.Sprintf("%d operation(s) failed: %s", len(err.Projects), strings.Join(err.Projects, ", "))
}

// ExitStatus returns the exit code of the fleet process.
func (err OperationsFailedError) ExitStatus() (int, error) {
	return ExitCodeFailures, nil
}

// InterruptedError is returned when the run was interrupted, it takes precedence over failures.
type InterruptedError struct {
	Remaining int
}

func (err InterruptedError) Error() string {
	return fmt.Sprintf("interrupted, %d project(s) were not processed", err.Remaining)
}

// ExitStatus returns the exit code of the fleet process.
func (err InterruptedError) ExitStatus() (int, error) {
	return ExitCodeInterrupted, nil
}
