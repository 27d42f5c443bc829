// Package runtime is the boundary to the container runtime.
//
// Compose operations (ps, pull, up, restart, down) are performed by the compose CLI and are described
// here as structured [CommandSpec] values, never as shell strings. Queries about running containers and
// resource pruning go straight to the Docker Engine API through the [Runtime] interface.
package runtime
