package exec

import (
	"os"
	"time"

	"github.com/gruntwork-io/compose-fleet/pkg/log"
)

// Option is a function that configures a `Cmd`.
type Option func(*Cmd)

// WithLogger sets the logger used to report signals and timeouts.
func WithLogger(logger log.Logger) Option {
	return func(cmd *Cmd) {
		cmd.logger = logger
	}
}

// WithEnv appends the given variables to the current process environment.
func WithEnv(env map[string]string) Option {
	return func(cmd *Cmd) {
		if len(env) == 0 {
			return
		}

		cmd.Env = os.Environ()
		for key, value := range env {
			cmd.Env = append(cmd.Env, key+"="+value)
		}
	}
}

// WithTimeout bounds the execution time of the command, zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(cmd *Cmd) {
		cmd.timeout = timeout
	}
}

// WithKillGracePeriod sets the time between the termination signal and the kill.
func WithKillGracePeriod(period time.Duration) Option {
	return func(cmd *Cmd) {
		cmd.killGracePeriod = period
		cmd.WaitDelay = period
	}
}

// WithTerminateSignal overrides the signal sent on timeout, nil disables timeouts.
func WithTerminateSignal(sig os.Signal) Option {
	return func(cmd *Cmd) {
		cmd.terminateSignal = sig
	}
}
