// Package exec runs external commands. It wraps the exec.Cmd package with timeout escalation:
// a command running past its deadline is asked to terminate and is killed if it does not exit in time.
package exec

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/os/signal"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// ExitCodeTimedOut is reported when a command exited after being asked to terminate on timeout.
	ExitCodeTimedOut = 124
	// ExitCodeKilled is reported when a command had to be killed after the termination grace period.
	ExitCodeKilled = 137
	// ExitCodeNotStarted is reported when a command could not be started at all, e.g. a missing binary.
	ExitCodeNotStarted = 127

	// DefaultKillGracePeriod is the time a command gets to exit after the termination signal.
	DefaultKillGracePeriod = 10 * time.Second
)

var warnNoTimeoutOnce sync.Once

// Cmd is a command type.
type Cmd struct {
	*exec.Cmd

	logger   log.Logger
	filename string

	terminateSignal os.Signal
	timeout         time.Duration
	killGracePeriod time.Duration
}

// Command returns the `Cmd` struct to execute the named program with the given arguments.
// The context only bounds the lifetime of the process, an interrupt of the app never cancels it.
func Command(ctx context.Context, name string, args ...string) *Cmd {
	cmd := &Cmd{
		Cmd:             exec.CommandContext(ctx, name, args...),
		logger:          log.Default(),
		filename:        filepath.Base(name),
		terminateSignal: signal.TerminateSignal,
		killGracePeriod: DefaultKillGracePeriod,
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmd.WaitDelay = DefaultKillGracePeriod

	setProcessGroup(cmd.Cmd)

	return cmd
}

// Configure sets options to the `Cmd`.
func (cmd *Cmd) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(cmd)
	}
}

// Run starts the command and waits for it to complete, enforcing the configured timeout.
// Any failure is returned as `ExecutionError`, which carries the exit code.
func (cmd *Cmd) Run() error {
	if err := cmd.Start(); err != nil {
		return errors.New(cmd.newError(err, ExitCodeNotStarted, false))
	}

	if cmd.timeout <= 0 {
		return cmd.wrapWaitError(cmd.Wait())
	}

	if cmd.terminateSignal == nil {
		warnNoTimeoutOnce.Do(func() {
			cmd.logger.Warnf("Timeouts are not supported on this platform, commands will run without a time limit")
		})

		return cmd.wrapWaitError(cmd.Wait())
	}

	done := make(chan error, 1)

	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(cmd.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return cmd.wrapWaitError(err)
	case <-timer.C:
	}

	cmd.logger.Warnf("%s did not finish within %s", cmd.filename, cmd.timeout)
	cmd.SendSignal(cmd.terminateSignal)

	grace := time.NewTimer(cmd.killGracePeriod)
	defer grace.Stop()

	select {
	case err := <-done:
		return errors.New(cmd.newError(err, ExitCodeTimedOut, true))
	case <-grace.C:
	}

	cmd.logger.Warnf("%s is still running %s after the termination signal, killing it", cmd.filename, cmd.killGracePeriod)
	cmd.SendSignal(os.Kill)

	return errors.New(cmd.newError(<-done, ExitCodeKilled, true))
}

// SendSignal sends the given `sig` to the executed command and the processes it spawned.
func (cmd *Cmd) SendSignal(sig os.Signal) {
	cmd.logger.Debugf("%s signal is sent to %s", cases.Title(language.English).String(sig.String()), cmd.filename)

	if err := signalProcessGroup(cmd.Process, sig); err != nil {
		cmd.logger.Errorf("Failed to send signal %s to %s: %v", sig, cmd.filename, err)
	}
}

func (cmd *Cmd) wrapWaitError(err error) error {
	if err == nil {
		return nil
	}

	// a background process spawned by the command still holds its output open
	if errors.Is(err, exec.ErrWaitDelay) {
		cmd.logger.Debugf("%s exited but left its output open", cmd.filename)
		return nil
	}

	exitCode, codeErr := GetExitCode(err)
	if codeErr != nil {
		exitCode = 1
	}

	return errors.New(cmd.newError(err, exitCode, false))
}

func (cmd *Cmd) newError(err error, exitCode int, timedOut bool) ExecutionError {
	return ExecutionError{
		Err:        err,
		Command:    cmd.Args[0],
		Args:       cmd.Args[1:],
		WorkingDir: cmd.Dir,
		ExitCode:   exitCode,
		TimedOut:   timedOut,
	}
}

// String renders the command line, used in dry-run and log output.
func (cmd *Cmd) String() string {
	return strings.Join(cmd.Args, " ")
}
