package runtime

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
)

var _ Runtime = new(DockerRuntime)

// DockerRuntime implements Runtime with the Docker Engine SDK.
type DockerRuntime struct {
	client *client.Client
}

// NewDockerRuntime creates a client from the environment (DOCKER_HOST etc.), the host overrides it when set.
func NewDockerRuntime(host string) (*DockerRuntime, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Errorf("create docker client: %w", err)
	}

	return &DockerRuntime{client: cli}, nil
}

// RunningContainers implements Runtime.
func (runtime *DockerRuntime) RunningContainers(ctx context.Context, project string) ([]Container, error) {
	args := filters.NewArgs(
		filters.Arg("label", ProjectLabel+"="+project),
		filters.Arg("status", "running"),
	)

	list, err := runtime.client.ContainerList(ctx, container.ListOptions{Filters: args})
	if err != nil {
		return nil, errors.Errorf("list containers of project %s: %w", project, err)
	}

	containers := make([]Container, 0, len(list))

	for _, item := range list {
		var name string
		if len(item.Names) > 0 {
			name = strings.TrimPrefix(item.Names[0], "/")
		}

		containers = append(containers, Container{
			ID:      item.ID,
			Name:    name,
			Image:   item.Image,
			Project: item.Labels[ProjectLabel],
			State:   item.State,
		})
	}

	return containers, nil
}

// Prune implements Runtime.
func (runtime *DockerRuntime) Prune(ctx context.Context) (*PruneReport, error) {
	var (
		report = new(PruneReport)
		errs   *errors.MultiError
	)

	if images, err := runtime.client.ImagesPrune(ctx, filters.NewArgs()); err != nil {
		errs = errs.Append(errors.Errorf("prune images: %w", err))
	} else {
		report.ImagesDeleted = len(images.ImagesDeleted)
		report.SpaceReclaimed += images.SpaceReclaimed
	}

	if networks, err := runtime.client.NetworksPrune(ctx, filters.NewArgs()); err != nil {
		errs = errs.Append(errors.Errorf("prune networks: %w", err))
	} else {
		report.NetworksDeleted = len(networks.NetworksDeleted)
	}

	if volumes, err := runtime.client.VolumesPrune(ctx, filters.NewArgs()); err != nil {
		errs = errs.Append(errors.Errorf("prune volumes: %w", err))
	} else {
		report.VolumesDeleted = len(volumes.VolumesDeleted)
		report.SpaceReclaimed += volumes.SpaceReclaimed
	}

	return report, errs.ErrorOrNil()
}

// Close implements Runtime.
func (runtime *DockerRuntime) Close() error {
	return runtime.client.Close()
}
