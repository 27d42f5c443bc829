// Package flags defines the global command line flags and copies their values into the options.
package flags

import (
	"strings"
	"time"

	"github.com/gruntwork-io/compose-fleet/internal/cliconfig"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	RootFlagName            = cliconfig.FlagRoot
	OnlyFlagName            = "only"
	ExcludeFlagName         = "exclude"
	IncludeInactiveFlagName = "include-inactive"
	OnlyInactiveFlagName    = "only-inactive"
	RunningOnlyFlagName     = "running-only"
	TimeoutFlagName         = cliconfig.FlagTimeout
	DryRunFlagName          = "dry-run"
	PruneAfterFlagName      = "prune-after"
	VerboseFlagName         = "verbose"
	NoHooksFlagName         = cliconfig.FlagNoHooks
	HooksDirFlagName        = cliconfig.FlagHooksDir
	LogFileFlagName         = cliconfig.FlagLogFile
	NoLogFlagName           = cliconfig.FlagNoLog
	NoColorFlagName         = "no-color"
	ReportFileFlagName      = "report-file"
	ReportSchemaFlagName    = "report-schema-file"
	NoLockFlagName          = "no-lock"
	ComposeCommandFlagName  = cliconfig.FlagComposeCommand
)

// NewGlobalFlags returns the flags shared by all commands. Plain values are bound to the options
// directly, the rest is copied by `Apply`.
func NewGlobalFlags(opts *options.FleetOptions) []cli.Flag {
	prefix := Prefix{FleetPrefix}

	return []cli.Flag{
		&cli.StringFlag{
			Name:        RootFlagName,
			EnvVars:     prefix.EnvVars(RootFlagName),
			Destination: &opts.RootDir,
			Value:       opts.RootDir,
			Usage:       "Directory whose subdirectories are the compose projects.",
		},
		&cli.StringSliceFlag{
			Name:    OnlyFlagName,
			EnvVars: prefix.EnvVars(OnlyFlagName),
			Usage:   "Only operate on these projects. Repeatable or comma separated, glob patterns allowed.",
		},
		&cli.StringSliceFlag{
			Name:    ExcludeFlagName,
			EnvVars: prefix.EnvVars(ExcludeFlagName),
			Usage:   "Skip these projects. Repeatable or comma separated, glob patterns allowed.",
		},
		&cli.BoolFlag{
			Name:        IncludeInactiveFlagName,
			EnvVars:     prefix.EnvVars(IncludeInactiveFlagName),
			Destination: &opts.Filter.IncludeInactive,
			Usage:       "Also operate on projects marked inactive.",
		},
		&cli.BoolFlag{
			Name:        OnlyInactiveFlagName,
			EnvVars:     prefix.EnvVars(OnlyInactiveFlagName),
			Destination: &opts.Filter.OnlyInactive,
			Usage:       "Only operate on projects marked inactive.",
		},
		&cli.BoolFlag{
			Name:        RunningOnlyFlagName,
			EnvVars:     prefix.EnvVars(RunningOnlyFlagName),
			Destination: &opts.Filter.RunningOnly,
			Usage:       "Skip mutating operations on projects without running containers.",
		},
		&cli.UintFlag{
			Name:    TimeoutFlagName,
			EnvVars: prefix.EnvVars(TimeoutFlagName),
			Usage:   "Timeout of every operation in seconds, 0 disables it.",
		},
		&cli.BoolFlag{
			Name:        DryRunFlagName,
			EnvVars:     prefix.EnvVars(DryRunFlagName),
			Destination: &opts.DryRun,
			Usage:       "Print the operations instead of running them.",
		},
		&cli.BoolFlag{
			Name:        PruneAfterFlagName,
			EnvVars:     prefix.EnvVars(PruneAfterFlagName),
			Destination: &opts.PruneAfter,
			Usage:       "Prune unused runtime resources after a mutating command.",
		},
		&cli.BoolFlag{
			Name:    VerboseFlagName,
			Aliases: []string{"v"},
			EnvVars: prefix.EnvVars(VerboseFlagName),
			Usage:   "Log debug messages.",
		},
		&cli.BoolFlag{
			Name:        NoHooksFlagName,
			EnvVars:     prefix.EnvVars(NoHooksFlagName),
			Destination: &opts.HooksDisabled,
			Usage:       "Do not run hook scripts.",
		},
		&cli.StringFlag{
			Name:        HooksDirFlagName,
			EnvVars:     prefix.EnvVars(HooksDirFlagName),
			Destination: &opts.HooksDir,
			Value:       opts.HooksDir,
			Usage:       "Directory of the hook scripts.",
			DefaultText: "<root>/" + options.DefaultHooksDirName,
		},
		&cli.StringFlag{
			Name:        LogFileFlagName,
			EnvVars:     prefix.EnvVars(LogFileFlagName),
			Destination: &opts.LogFile,
			Value:       opts.LogFile,
			Usage:       "File receiving a copy of the output.",
		},
		&cli.BoolFlag{
			Name:        NoLogFlagName,
			EnvVars:     prefix.EnvVars(NoLogFlagName),
			Destination: &opts.LogDisabled,
			Usage:       "Do not write the log file.",
		},
		&cli.BoolFlag{
			Name:        NoColorFlagName,
			EnvVars:     prefix.EnvVars(NoColorFlagName),
			Destination: &opts.NoColor,
			Usage:       "Disable colored output.",
		},
		&cli.StringFlag{
			Name:        ReportFileFlagName,
			EnvVars:     prefix.EnvVars(ReportFileFlagName),
			Destination: &opts.ReportFile,
			Usage:       "Write the outcomes to this file, CSV or JSON by extension.",
		},
		&cli.StringFlag{
			Name:        ReportSchemaFlagName,
			EnvVars:     prefix.EnvVars(ReportSchemaFlagName),
			Destination: &opts.ReportSchemaFile,
			Usage:       "Write the JSON schema of the report to this file.",
		},
		&cli.BoolFlag{
			Name:        NoLockFlagName,
			EnvVars:     prefix.EnvVars(NoLockFlagName),
			Destination: &opts.NoLock,
			Usage:       "Do not take the root lock.",
		},
		&cli.StringFlag{
			Name:        ComposeCommandFlagName,
			EnvVars:     prefix.EnvVars(ComposeCommandFlagName),
			Destination: &opts.ComposeCommand,
			Value:       opts.ComposeCommand,
			Usage:       "Compose command line.",
		},
	}
}

// Apply copies the flag values without a destination into the options.
func Apply(ctx *cli.Context, opts *options.FleetOptions) {
	if ctx.IsSet(OnlyFlagName) {
		opts.Filter.Only = splitList(ctx.StringSlice(OnlyFlagName))
	}

	if ctx.IsSet(ExcludeFlagName) {
		opts.Filter.Exclude = splitList(ctx.StringSlice(ExcludeFlagName))
	}

	if ctx.IsSet(TimeoutFlagName) {
		opts.Timeout = time.Duration(ctx.Uint(TimeoutFlagName)) * time.Second
	}

	if ctx.Bool(VerboseFlagName) {
		opts.LogLevel = log.DebugLevel
	}
}

func splitList(values []string) []string {
	var list []string

	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}

	return list
}
