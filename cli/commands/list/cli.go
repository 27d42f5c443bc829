// Package list provides the `fleet list` command showing the discovered projects.
package list

import (
	"github.com/gruntwork-io/compose-fleet/cli/commands/common"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName  = "list"
	CommandAlias = "ls"
)

func NewCommand(opts *options.FleetOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Aliases:   []string{CommandAlias},
		Usage:     "List the selected projects with their state, compose file, identity and running containers.",
		ArgsUsage: "[projects...]",
		Action: func(ctx *cli.Context) error {
			opts.Filter.Projects = ctx.Args().Slice()

			controller, cleanup, err := common.NewController(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			infos, err := controller.List(ctx.Context)
			if err != nil {
				return err
			}

			return Render(opts, infos)
		},
	}
}
