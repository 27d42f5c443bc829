package hooks

import (
	"context"
	"path/filepath"

	"github.com/gruntwork-io/compose-fleet/internal/runtime"
)

var _ Hook = new(ScriptHook)

// ScriptHook runs an executable with the project name and the absolute project directory as
// its only arguments. The working directory is the project directory and the environment is inherited.
type ScriptHook struct {
	executor runtime.Executor
	Path     string
	opts     runtime.ExecOptions
}

// Name implements Hook.
func (hook *ScriptHook) Name() string {
	return filepath.Base(hook.Path)
}

// Spec returns the command the hook runs.
func (hook *ScriptHook) Spec(project, dir string) runtime.CommandSpec {
	return runtime.CommandSpec{
		Program: hook.Path,
		Args:    []string{project, dir},
		Dir:     dir,
	}
}

// Run implements Hook.
func (hook *ScriptHook) Run(ctx context.Context, project, dir string) error {
	return hook.executor.Execute(ctx, hook.Spec(project, dir), hook.opts)
}
