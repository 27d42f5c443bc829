// Package commands assembles the fleet commands.
package commands

import (
	"github.com/gruntwork-io/compose-fleet/cli/commands/fleet"
	"github.com/gruntwork-io/compose-fleet/cli/commands/inactive"
	"github.com/gruntwork-io/compose-fleet/cli/commands/list"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/urfave/cli/v2"
)

// NewCommands returns all fleet commands in the order they are listed in the help.
func NewCommands(opts *options.FleetOptions) []*cli.Command {
	cmds := []*cli.Command{list.NewCommand(opts)}
	cmds = append(cmds, fleet.NewCommands(opts)...)

	return append(cmds, inactive.NewCommand(opts))
}
