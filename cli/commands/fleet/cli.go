// Package fleet provides the commands running compose operations over the selected projects.
package fleet

import (
	"github.com/gruntwork-io/compose-fleet/cli/commands/common"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/runner"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/urfave/cli/v2"
)

const projectsArgsUsage = "[projects...]"

var commandUsages = []struct {
	name  string
	usage string
}{
	{runner.CommandStatus, "Show the containers of each project."},
	{runner.CommandCheck, "Validate the compose file of each project and show its identity and running state."},
	{runner.CommandPull, "Pull the images of each project."},
	{runner.CommandUp, "Create and start the containers of each project."},
	{runner.CommandUpdate, "Pull the images of each project and recreate its containers, or run its post-update hook."},
	{runner.CommandRestart, "Restart the containers of each project."},
	{runner.CommandDown, "Stop and remove the containers of each project."},
}

// NewCommands returns the commands running compose operations.
func NewCommands(opts *options.FleetOptions) []*cli.Command {
	cmds := make([]*cli.Command, 0, len(commandUsages)+1)

	for _, cmd := range commandUsages {
		cmds = append(cmds, &cli.Command{
			Name:      cmd.name,
			Usage:     cmd.usage,
			ArgsUsage: projectsArgsUsage,
			Action: func(ctx *cli.Context) error {
				return common.Run(ctx, opts, cmd.name)
			},
		})
	}

	return append(cmds, NewPruneCommand(opts))
}

// NewPruneCommand returns the command removing unused images, networks and volumes of the runtime.
func NewPruneCommand(opts *options.FleetOptions) *cli.Command {
	return &cli.Command{
		Name:  runner.CommandPrune,
		Usage: "Remove unused images, networks and volumes of the container runtime.",
		Action: func(ctx *cli.Context) error {
			if ctx.Args().Present() {
				return common.NewExitError(errors.Errorf("%s does not take project names", runner.CommandPrune), runner.ExitCodeGeneralError)
			}

			return common.Run(ctx, opts, runner.CommandPrune)
		},
	}
}
