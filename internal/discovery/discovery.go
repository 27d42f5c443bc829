package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
)

// DefaultInactiveMarker is the name of the sentinel file excluding a project from default operations.
const DefaultInactiveMarker = ".inactive"

// DefaultComposeFilenames are the recognized compose definition files in priority order.
var DefaultComposeFilenames = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// Discovery is the configuration for a project discovery.
type Discovery struct {
	rootDir          string
	inactiveMarker   string
	composeFilenames []string
}

// NewDiscovery creates a new Discovery rooted at the given directory.
func NewDiscovery(rootDir string) *Discovery {
	return &Discovery{
		rootDir:          rootDir,
		inactiveMarker:   DefaultInactiveMarker,
		composeFilenames: DefaultComposeFilenames,
	}
}

// WithComposeFilenames sets the compose filenames to discover, in priority order.
func (d *Discovery) WithComposeFilenames(filenames []string) *Discovery {
	if len(filenames) > 0 {
		d.composeFilenames = filenames
	}

	return d
}

// WithInactiveMarker sets the name of the inactive marker file.
func (d *Discovery) WithInactiveMarker(name string) *Discovery {
	if name != "" {
		d.inactiveMarker = name
	}

	return d
}

// Discover returns the projects found in the root directory: the root itself first, when it holds a
// compose file, followed by its subdirectories in lexicographic order.
func (d *Discovery) Discover(ctx context.Context, l log.Logger) (Projects, error) {
	rootDir, err := filepath.Abs(d.rootDir)
	if err != nil {
		return nil, errors.New(err)
	}

	if info, err := os.Stat(rootDir); err != nil || !info.IsDir() {
		return nil, errors.New(RootNotFoundError{Path: rootDir})
	}

	var projects Projects

	if project := d.newProject(rootDir); project != nil {
		projects = append(projects, project)
	}

	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, errors.New(err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !isProjectCandidate(rootDir, entry) {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err)
		}

		dir := filepath.Join(rootDir, name)

		project := d.newProject(dir)
		if project == nil {
			l.Tracef("Skipping %s, no compose file found", dir)
			continue
		}

		projects = append(projects, project)
	}

	l.Debugf("Discovered %d projects in %s", len(projects), rootDir)

	return projects, nil
}

// newProject returns the project for the directory, or nil if it holds none of the compose files.
func (d *Discovery) newProject(dir string) *Project {
	for _, filename := range d.composeFilenames {
		path := filepath.Join(dir, filename)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return &Project{
				Dir:            dir,
				Name:           filepath.Base(dir),
				ComposeFile:    path,
				Inactive:       fileExists(filepath.Join(dir, d.inactiveMarker)),
				inactiveMarker: d.inactiveMarker,
			}
		}
	}

	return nil
}

// isProjectCandidate returns true for non-hidden directories, following symlinks.
func isProjectCandidate(rootDir string, entry os.DirEntry) bool {
	if strings.HasPrefix(entry.Name(), ".") {
		return false
	}

	if entry.IsDir() {
		return true
	}

	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}

	info, err := os.Stat(filepath.Join(rootDir, entry.Name()))

	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
