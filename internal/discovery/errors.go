package discovery

import "fmt"

// RootNotFoundError is returned when the projects root is not a directory.
type RootNotFoundError struct {
	Path string
}

func (err RootNotFoundError) Error() string {
	return fmt.Sprintf("projects root %s is not a directory", err.Path)
}

// NoProjectsDiscoveredError is returned when the projects root holds no compose project at all.
type NoProjectsDiscoveredError struct {
	Path string
}

func (err NoProjectsDiscoveredError) Error() string {
	return fmt.Sprintf("no compose projects found in %s", err.Path)
}
