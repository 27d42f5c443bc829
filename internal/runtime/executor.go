package runtime

import (
	"context"
	"io"
	"time"

	"github.com/gruntwork-io/compose-fleet/internal/os/exec"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
)

// ExecOptions control a single execution.
type ExecOptions struct {
	Stdout io.Writer
	Stderr io.Writer
	// Timeout bounds the execution, zero means no limit.
	Timeout time.Duration
}

// Executor runs command specs as blocking external processes. A failed run returns an error
// carrying the exit code, see exec.GetExitCode.
type Executor interface {
	Execute(ctx context.Context, spec CommandSpec, opts ExecOptions) error
}

var _ Executor = new(ProcessExecutor)

// ProcessExecutor implements Executor with OS processes.
type ProcessExecutor struct {
	logger log.Logger
	// extra options applied to every command, used by tests to shorten the kill grace period.
	cmdOpts []exec.Option
}

// NewProcessExecutor returns an executor logging timeouts and signals to the given logger.
func NewProcessExecutor(l log.Logger, opts ...exec.Option) *ProcessExecutor {
	return &ProcessExecutor{logger: l, cmdOpts: opts}
}

// Execute implements Executor.
func (executor *ProcessExecutor) Execute(ctx context.Context, spec CommandSpec, opts ExecOptions) error {
	cmd := exec.Command(ctx, spec.Program, spec.Args...)
	cmd.Dir = spec.Dir

	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}

	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	}

	cmd.Configure(
		exec.WithLogger(executor.logger),
		exec.WithEnv(spec.Env),
		exec.WithTimeout(opts.Timeout),
	)
	cmd.Configure(executor.cmdOpts...)

	executor.logger.Debugf("Running %s in %s", spec, spec.Dir)

	return cmd.Run()
}
