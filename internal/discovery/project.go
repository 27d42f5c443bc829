package discovery

import (
	"os"
	"path/filepath"

	"github.com/gruntwork-io/compose-fleet/internal/errors"
)

// Project is a directory holding a compose definition file, managed as one unit.
type Project struct {
	// Dir is the absolute path of the project directory.
	Dir string
	// Name is the base name of the directory, used for selection, hooks and identity.
	Name string
	// ComposeFile is the absolute path of the compose file selected at discovery.
	ComposeFile string
	// Inactive is true when the inactive marker was present at discovery.
	Inactive bool

	inactiveMarker string
}

// InactiveMarkerPath returns the path of the project's inactive marker file.
func (project *Project) InactiveMarkerPath() string {
	return filepath.Join(project.Dir, project.inactiveMarker)
}

// SetInactive creates the empty inactive marker, or removes it. Both directions are idempotent.
func (project *Project) SetInactive(inactive bool) error {
	path := project.InactiveMarkerPath()

	if inactive {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.New(err)
		}

		if err := file.Close(); err != nil {
			return errors.New(err)
		}
	} else if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New(err)
	}

	project.Inactive = inactive

	return nil
}

// Projects is a list of discovered projects.
type Projects []*Project

// Names returns the base names of the projects.
func (projects Projects) Names() []string {
	names := make([]string, 0, len(projects))

	for _, project := range projects {
		names = append(names, project.Name)
	}

	return names
}

// Find returns the project with the given name, or nil.
func (projects Projects) Find(name string) *Project {
	for _, project := range projects {
		if project.Name == name {
			return project
		}
	}

	return nil
}
