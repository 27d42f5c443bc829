package runner

import (
	"context"

	"github.com/gruntwork-io/compose-fleet/internal/discovery"
	"github.com/gruntwork-io/compose-fleet/internal/identity"
)

// ProjectInfo describes a selected project for listing.
type ProjectInfo struct {
	Project  *discovery.Project
	Identity string
	// Running is the number of running containers, -1 when the runtime could not be queried.
	Running int
}

// List returns the selected projects with their resolved identity and running container count.
func (c *Controller) List(ctx context.Context) ([]ProjectInfo, error) {
	projects, err := c.Select(ctx, CommandList)
	if err != nil {
		return nil, err
	}

	resolver := identity.NewResolver(c.logger, c.runtime)
	infos := make([]ProjectInfo, 0, len(projects))

	for _, project := range projects {
		info := ProjectInfo{
			Project:  project,
			Identity: resolver.Resolve(ctx, project.Dir),
			Running:  -1,
		}

		if c.runtime != nil {
			if containers, err := c.runtime.RunningContainers(ctx, info.Identity); err == nil {
				info.Running = len(containers)
			} else {
				c.logger.Debugf("Failed to query running containers of %s: %v", info.Identity, err)
			}
		}

		infos = append(infos, info)
	}

	return infos, nil
}
