// Package common holds the helpers shared by the fleet commands.
package common

import (
	"os"

	"github.com/gruntwork-io/compose-fleet/internal/os/signal"
	"github.com/gruntwork-io/compose-fleet/internal/runner"
	"github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/urfave/cli/v2"
)

// NewRuntime connects to the container runtime. Tests replace it to run without a daemon.
var NewRuntime = func(host string) (runtime.Runtime, error) {
	rt, err := runtime.NewDockerRuntime(host)
	if err != nil {
		return nil, err
	}

	return rt, nil
}

// NewController returns a controller for the options and a function releasing the runtime client.
// Without a runtime the controller still runs compose commands, identities fall back to sanitized names.
func NewController(opts *options.FleetOptions) (*runner.Controller, func(), error) {
	rt, err := NewRuntime(opts.DockerHost)
	if err != nil {
		opts.Logger.Warnf("Container runtime is not available: %v", err)
	}

	cleanup := func() {
		if rt == nil {
			return
		}

		if err := rt.Close(); err != nil {
			opts.Logger.Debugf("Failed to close the runtime client: %v", err)
		}
	}

	controller, err := runner.NewController(opts.Logger, opts, rt, runtime.NewProcessExecutor(opts.Logger))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return controller, cleanup, nil
}

// Run runs the command over the projects named by the positional arguments, or all projects.
// An interrupt lets the operation in flight complete and stops before the next project.
func Run(ctx *cli.Context, opts *options.FleetOptions, command string) error {
	opts.Filter.Projects = ctx.Args().Slice()

	controller, cleanup, err := NewController(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	stop := signal.NotifyInterrupt(func(os.Signal) {
		controller.Interrupt()
	})
	defer stop()

	return controller.Run(ctx.Context, command)
}
