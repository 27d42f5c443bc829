package runtime

import (
	"context"
)

// ProjectLabel is the container label the compose CLI scopes projects with.
const ProjectLabel = "com.docker.compose.project"

// Container is a running container belonging to a compose project.
type Container struct {
	ID      string
	Name    string
	Image   string
	Project string
	State   string
}

// PruneReport summarizes a prune of unused resources.
type PruneReport struct {
	ImagesDeleted   int
	NetworksDeleted int
	VolumesDeleted  int
	SpaceReclaimed  uint64
}

// Runtime is the part of the container runtime queried directly rather than through the compose CLI.
type Runtime interface {
	// RunningContainers returns the running containers labeled with the given compose project.
	RunningContainers(ctx context.Context, project string) ([]Container, error)

	// Prune removes unused images, networks and volumes. Every kind is attempted even if a previous one failed.
	Prune(ctx context.Context) (*PruneReport, error)

	// Close releases the connection to the runtime.
	Close() error
}
