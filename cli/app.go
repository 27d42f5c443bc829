// Package cli builds the fleet command line application.
package cli

import (
	"os"

	"github.com/google/uuid"
	"github.com/gruntwork-io/compose-fleet/cli/commands"
	"github.com/gruntwork-io/compose-fleet/cli/flags"
	"github.com/gruntwork-io/compose-fleet/internal/cliconfig"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/os/stdout"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
)

const AppName = "fleet"

// Version is set at build time with -ldflags.
var Version = "dev"

// NewApp creates the fleet CLI app.
func NewApp(opts *options.FleetOptions) *cli.App {
	var closeLog func()

	return &cli.App{
		Name:                 AppName,
		Usage:                "Run docker compose operations over a directory of compose projects.",
		UsageText:            "fleet [global options] <command> [projects...]",
		Version:              Version,
		Writer:               opts.Writer,
		ErrWriter:            opts.ErrWriter,
		Flags:                flags.NewGlobalFlags(opts),
		Commands:             commands.NewCommands(opts),
		EnableBashCompletion: true,
		Suggest:              true,
		Before: func(ctx *cli.Context) error {
			var err error

			closeLog, err = initialSetup(ctx, opts)

			return err
		},
		After: func(*cli.Context) error {
			if closeLog != nil {
				closeLog()
			}

			return nil
		},
		// main maps errors to exit codes
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// initialSetup applies the configuration files under the flags, opens the log file and creates the logger.
// It returns the function closing the log file.
func initialSetup(ctx *cli.Context, opts *options.FleetOptions) (func(), error) {
	cfg, err := cliconfig.LoadConfig(cliconfig.Paths()...)
	if err != nil {
		return nil, err
	}

	if err := cfg.Apply(opts, ctx.IsSet); err != nil {
		return nil, err
	}

	flags.Apply(ctx, opts)

	opts.RunID = uuid.NewString()

	closeLog := func() {}
	configuredLogFile := opts.LogFile

	var tee *log.TeeWriter

	if !opts.LogDisabled {
		logFile, err := homedir.Expand(opts.LogFile)
		if err != nil {
			return nil, errors.New(err)
		}

		if tee, err = log.NewTeeWriter(opts.Writer, logFile, opts.FallbackLogFile()); err != nil {
			return nil, err
		}

		if err := tee.WriteHeader(opts.RunID, os.Args); err != nil {
			return nil, errors.New(err)
		}

		opts.LogFile = tee.Path
		opts.ErrWriter = tee.WithScreen(opts.ErrWriter)
		opts.Writer = tee

		closeLog = func() {
			_ = tee.Close()
		}
	}

	formatter := log.NewPrettyFormatter()
	formatter.DisableColors = opts.NoColor || !stdout.IsTerminal(opts.ErrWriter)

	opts.Logger = log.New(log.WithOutput(opts.ErrWriter), log.WithLevel(opts.LogLevel), log.WithFormatter(formatter))

	if tee != nil && tee.UsedFallback {
		opts.Logger.Warnf("Log file %s is not writable, logging to %s", configuredLogFile, tee.Path)
	}

	opts.Logger.Debugf("Run %s, configuration files %v", opts.RunID, cfg.Sources)

	return closeLog, nil
}
