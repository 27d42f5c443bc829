package main

import (
	"context"
	"os"

	"github.com/gruntwork-io/compose-fleet/cli"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/os/exec"
	"github.com/gruntwork-io/compose-fleet/internal/runner"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
)

// The main entrypoint for fleet
func main() {
	opts := options.NewFleetOptions()

	defer errors.Recover(checkForErrorsAndExit(opts))

	app := cli.NewApp(opts)

	ctx := log.ContextWithLogger(context.Background(), opts.Logger)
	err := app.RunContext(ctx, os.Args)

	checkForErrorsAndExit(opts)(err)
}

// If there is an error, display it in the console and exit with the code it carries, or 1. Otherwise, exit 0.
func checkForErrorsAndExit(opts *options.FleetOptions) func(error) {
	return func(err error) {
		if err == nil {
			os.Exit(runner.ExitCodeSuccess)
		}

		logger := opts.Logger
		logger.Error(err.Error())

		if errStack := errors.ErrorStack(err); errStack != "" {
			logger.Debug(errStack)
		}

		exitCode, exitCodeErr := exec.GetExitCode(err)
		if exitCodeErr != nil {
			exitCode = runner.ExitCodeGeneralError
		}

		os.Exit(exitCode)
	}
}
