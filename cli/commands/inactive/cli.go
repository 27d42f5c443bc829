// Package inactive provides the `fleet inactive` commands managing the inactive markers of projects.
package inactive

import (
	"fmt"

	"github.com/gruntwork-io/compose-fleet/cli/commands/common"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/runner"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "inactive"

	ListCommandName = "list"
	OnCommandName   = "on"
	OffCommandName  = "off"
)

func NewCommand(opts *options.FleetOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Manage the markers excluding projects from default operations.",
		Subcommands: []*cli.Command{
			{
				Name:      ListCommandName,
				Usage:     "List the projects marked inactive.",
				ArgsUsage: "[projects...]",
				Action: func(ctx *cli.Context) error {
					return List(ctx, opts)
				},
			},
			{
				Name:      OnCommandName,
				Usage:     "Mark projects inactive.",
				ArgsUsage: "[projects...]",
				Action: func(ctx *cli.Context) error {
					return common.Run(ctx, opts, runner.CommandInactiveOn)
				},
			},
			{
				Name:      OffCommandName,
				Usage:     "Remove the inactive marker of projects.",
				ArgsUsage: "[projects...]",
				Action: func(ctx *cli.Context) error {
					return common.Run(ctx, opts, runner.CommandInactiveOff)
				},
			},
		},
	}
}

// List prints the names of the selected projects marked inactive, one per line.
func List(ctx *cli.Context, opts *options.FleetOptions) error {
	opts.Filter.Projects = ctx.Args().Slice()
	opts.Filter.OnlyInactive = true

	controller, cleanup, err := common.NewController(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	projects, err := controller.Select(ctx.Context, runner.CommandList)
	if err != nil {
		var noProjectsErr runner.NoProjectsAfterFilterError
		if errors.As(err, &noProjectsErr) {
			fmt.Fprintln(opts.Writer, "No inactive projects")
			return nil
		}

		return err
	}

	for _, project := range projects {
		fmt.Fprintln(opts.Writer, project.Name)
	}

	return nil
}
