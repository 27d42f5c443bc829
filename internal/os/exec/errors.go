package exec

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/gruntwork-io/compose-fleet/internal/errors"
)

// ExecutionError is returned when a command fails to start, exits with a non-zero code or times out.
type ExecutionError struct {
	Err        error
	Command    string
	WorkingDir string
	Args       []string
	ExitCode   int
	TimedOut   bool
}

func (err ExecutionError) Error() string {
	msg := fmt.Sprintf("failed to execute %q in %s: exit code %d", strings.TrimSpace(err.Command+" "+strings.Join(err.Args, " ")), err.WorkingDir, err.ExitCode)

	if err.TimedOut {
		msg += " (timeout)"
	}

	return msg
}

// ExitStatus returns the exit code of the command.
func (err ExecutionError) ExitStatus() (int, error) {
	return err.ExitCode, nil
}

func (err ExecutionError) Unwrap() error {
	return err.Err
}

// GetExitCode returns the exit code of a command. If the error does not
// carry an exit status and is not an exec.ExitError, the error is returned.
func GetExitCode(err error) (int, error) {
	var exitStatus interface {
		ExitStatus() (int, error)
	}

	if errors.As(err, &exitStatus) {
		return exitStatus.ExitStatus()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}

		// terminated by a signal
		return ExitCodeKilled, nil
	}

	return 0, err
}
