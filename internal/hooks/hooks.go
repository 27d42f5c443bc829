// Package hooks locates per-project hook scripts.
//
// A hook is identified by a phase, a command and a project and lives at a fixed path:
//
//	<dir>/<phase>-<command>_<project>.<ext>
//
// It participates only when the file exists, is a regular file and has an executable bit.
// The post-update hook replaces the default update of a project, every other hook runs alongside
// the default action.
package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gruntwork-io/compose-fleet/internal/runtime"
)

// DefaultExt is the extension of hook scripts unless configured otherwise.
const DefaultExt = "sh"

// Phase is the moment a hook runs relative to the default action.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
)

// IsOverride reports whether the hook point replaces the default action instead of running alongside it.
func IsOverride(phase Phase, command string) bool {
	return phase == PhasePost && command == "update"
}

// Hook is a callback for one project. The script hook runs an executable, other mechanisms
// can be substituted without changing the caller.
type Hook interface {
	// Name identifies the hook in logs and reports.
	Name() string
	// Run runs the hook for the project in the given directory.
	Run(ctx context.Context, project, dir string) error
}

// Resolver resolves hook points to scripts.
type Resolver struct {
	executor runtime.Executor

	// Dir is the directory containing the hook scripts.
	Dir string
	// Ext is the file extension of the hook scripts, without the dot.
	Ext string
	// Disabled deactivates every hook regardless of the filesystem.
	Disabled bool

	execOpts runtime.ExecOptions
}

// NewResolver returns a resolver whose hooks run through the executor with the given options.
func NewResolver(dir, ext string, disabled bool, executor runtime.Executor, opts runtime.ExecOptions) *Resolver {
	if ext == "" {
		ext = DefaultExt
	}

	return &Resolver{
		executor: executor,
		Dir:      dir,
		Ext:      ext,
		Disabled: disabled,
		execOpts: opts,
	}
}

// Path returns the location of the hook script.
func (resolver *Resolver) Path(phase Phase, command, project string) string {
	return filepath.Join(resolver.Dir, fmt.Sprintf("%s-%s_%s.%s", phase, command, project, resolver.Ext))
}

// IsActive reports whether the script at path participates.
func (resolver *Resolver) IsActive(path string) bool {
	if resolver.Disabled {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// Lookup returns the active hook of the hook point, if any.
func (resolver *Resolver) Lookup(phase Phase, command, project string) (Hook, bool) {
	path := resolver.Path(phase, command, project)
	if !resolver.IsActive(path) {
		return nil, false
	}

	return &ScriptHook{Path: path, executor: resolver.executor, opts: resolver.execOpts}, true
}
