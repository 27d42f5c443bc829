package flags_test

import (
	"context"
	"testing"
	"time"

	"github.com/gruntwork-io/compose-fleet/cli/flags"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func parse(t *testing.T, args ...string) *options.FleetOptions {
	t.Helper()

	opts := options.NewFleetOptions()

	app := &cli.App{
		Flags: flags.NewGlobalFlags(opts),
		Action: func(ctx *cli.Context) error {
			flags.Apply(ctx, opts)
			return nil
		},
	}

	require.NoError(t, app.RunContext(context.Background(), append([]string{"fleet"}, args...)))

	return opts
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	opts := parse(t)

	assert.Equal(t, ".", opts.RootDir)
	assert.Equal(t, options.DefaultLogFile, opts.LogFile)
	assert.Equal(t, "docker compose", opts.ComposeCommand)
	assert.Zero(t, opts.Timeout)
	assert.Equal(t, log.InfoLevel, opts.LogLevel)
	assert.Empty(t, opts.Filter.Only)
}

func TestApply(t *testing.T) {
	t.Parallel()

	opts := parse(t,
		"--root", "/srv",
		"--only", "api, db",
		"--only", "web",
		"--exclude", "legacy-*",
		"--timeout", "90",
		"--running-only",
		"--dry-run",
		"--verbose",
		"--no-hooks",
		"--report-file", "out.json",
	)

	assert.Equal(t, "/srv", opts.RootDir)
	assert.Equal(t, []string{"api", "db", "web"}, opts.Filter.Only)
	assert.Equal(t, []string{"legacy-*"}, opts.Filter.Exclude)
	assert.Equal(t, 90*time.Second, opts.Timeout)
	assert.True(t, opts.Filter.RunningOnly)
	assert.True(t, opts.DryRun)
	assert.True(t, opts.HooksDisabled)
	assert.Equal(t, log.DebugLevel, opts.LogLevel)
	assert.Equal(t, "out.json", opts.ReportFile)
}

func TestEnvVars(t *testing.T) {
	t.Setenv("FLEET_ROOT", "/opt/stacks")
	t.Setenv("FLEET_PRUNE_AFTER", "true")

	opts := parse(t)

	assert.Equal(t, "/opt/stacks", opts.RootDir)
	assert.True(t, opts.PruneAfter)
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	prefix := flags.Prefix{flags.FleetPrefix}

	assert.Equal(t, "FLEET_INCLUDE_INACTIVE", prefix.EnvVar("include-inactive"))
	assert.Equal(t, []string{"FLEET_ROOT", "FLEET_NO_LOG"}, prefix.EnvVars("root", "no-log"))
}
