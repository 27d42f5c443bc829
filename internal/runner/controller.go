package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gruntwork-io/compose-fleet/internal/discovery"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/filter"
	"github.com/gruntwork-io/compose-fleet/internal/hooks"
	"github.com/gruntwork-io/compose-fleet/internal/identity"
	"github.com/gruntwork-io/compose-fleet/internal/locks"
	"github.com/gruntwork-io/compose-fleet/internal/os/stdout"
	"github.com/gruntwork-io/compose-fleet/internal/report"
	"github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
)

const runtimeTaskName = "(runtime)"

// Controller runs a command over the selected projects and accumulates the outcomes.
type Controller struct {
	logger   log.Logger
	opts     *options.FleetOptions
	runtime  runtime.Runtime
	executor runtime.Executor
	compose  *runtime.Compose
	hooks    *hooks.Resolver
	report   *report.Report

	interrupted atomic.Bool
	color       bool
}

// NewController returns a controller. The runtime may be nil when the container runtime is unavailable,
// identities then fall back to sanitized names.
func NewController(l log.Logger, opts *options.FleetOptions, rt runtime.Runtime, executor runtime.Executor) (*Controller, error) {
	compose, err := runtime.NewCompose(opts.ComposeCommand)
	if err != nil {
		return nil, err
	}

	color := !opts.NoColor && stdout.IsTerminal(opts.Writer)

	// hooks run with the project directory as working directory
	hooksDir, err := filepath.Abs(opts.HooksDirOrDefault())
	if err != nil {
		return nil, errors.New(err)
	}

	hookResolver := hooks.NewResolver(hooksDir, opts.HooksExt, opts.HooksDisabled, executor, runtime.ExecOptions{
		Stdout:  opts.Writer,
		Stderr:  opts.ErrWriter,
		Timeout: opts.Timeout,
	})

	return &Controller{
		logger:   l,
		opts:     opts,
		runtime:  rt,
		executor: executor,
		compose:  compose,
		hooks:    hookResolver,
		report:   report.NewReport(report.WithColor(color)),
		color:    color,
	}, nil
}

// Report returns the outcomes recorded so far.
func (c *Controller) Report() *report.Report {
	return c.report
}

// Interrupt asks the controller to stop after the operation in flight. It only sets a flag and is
// safe to call from a signal handler goroutine.
func (c *Controller) Interrupt() {
	if c.interrupted.CompareAndSwap(false, true) {
		c.logger.Warnf("Interrupt received, stopping after the current operation")
	}
}

// Interrupted reports whether the run was interrupted.
func (c *Controller) Interrupted() bool {
	return c.interrupted.Load()
}

// Select discovers the projects under the root and applies the filters.
func (c *Controller) Select(ctx context.Context, command string) (discovery.Projects, error) {
	rootDir, err := filepath.Abs(c.opts.RootDir)
	if err != nil {
		return nil, errors.New(err)
	}

	projects, err := discovery.NewDiscovery(rootDir).WithInactiveMarker(c.opts.InactiveMarker).Discover(ctx, c.logger)
	if err != nil {
		return nil, err
	}

	if len(projects) == 0 {
		return nil, errors.New(discovery.NoProjectsDiscoveredError{Path: rootDir})
	}

	cfg := c.opts.Filter
	if command == CommandInactiveOff {
		cfg.OnlyInactive = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	selected := filter.Apply(c.logger, projects, cfg)
	if len(selected) == 0 {
		return nil, errors.New(NoProjectsAfterFilterError{Discovered: len(projects)})
	}

	c.logger.Debugf("Selected %d of %d projects: %v", len(selected), len(projects), selected.Names())

	return selected, nil
}

// Run runs the command over the selected projects, renders the summary and returns an error carrying
// the exit code when any operation failed or the run was interrupted.
func (c *Controller) Run(ctx context.Context, command string) error {
	if !IsRunCommand(command) {
		return errors.New(UnknownCommandError{Command: command})
	}

	engine := c.newEngine()

	if command == CommandPrune {
		unlock, err := c.lock(command)
		if err != nil {
			return err
		}
		defer unlock()

		c.prune(ctx, engine)

		return c.finish(0)
	}

	projects, err := c.Select(ctx, command)
	if err != nil {
		return err
	}

	unlock, err := c.lock(command)
	if err != nil {
		return err
	}
	defer unlock()

	resolver := identity.NewResolver(c.logger, c.runtime)
	remaining := len(projects)

	for _, project := range projects {
		if c.interrupted.Load() {
			break
		}

		c.runProject(ctx, engine, resolver, command, project)
		remaining--
	}

	if c.opts.PruneAfter && IsMutating(command) && !c.interrupted.Load() {
		c.prune(ctx, engine)
	}

	return c.finish(remaining)
}

func (c *Controller) newEngine() *Engine {
	return NewEngine(c.logger, c.executor, c.runtime, EngineOptions{
		Stdout:      c.opts.Writer,
		Stderr:      c.opts.ErrWriter,
		Timeout:     c.opts.Timeout,
		DryRun:      c.opts.DryRun,
		RunningOnly: c.opts.Filter.RunningOnly,
		Color:       c.color,
	})
}

// lock acquires the root lock for commands changing state. Dry runs and read-only commands skip it.
func (c *Controller) lock(command string) (func(), error) {
	noop := func() {}

	if c.opts.NoLock || c.opts.DryRun || !(IsMutating(command) || command == CommandInactiveOn || command == CommandInactiveOff) {
		return noop, nil
	}

	rootDir, err := filepath.Abs(c.opts.RootDir)
	if err != nil {
		return nil, errors.New(err)
	}

	if info, err := os.Stat(rootDir); err != nil || !info.IsDir() {
		return noop, nil
	}

	lockfile := locks.NewLockfile(rootDir)
	if err := lockfile.TryLock(); err != nil {
		return nil, err
	}

	return func() {
		if err := lockfile.Unlock(); err != nil {
			c.logger.Warnf("Failed to release lock %s: %v", lockfile.Path(), err)
		}
	}, nil
}

func (c *Controller) record(run *report.Run) *report.Run {
	c.report.AddRun(run)
	return run
}

func (c *Controller) runProject(ctx context.Context, engine *Engine, resolver *identity.Resolver, command string, project *discovery.Project) {
	task := Task{
		Name:      project.Name,
		Dir:       project.Dir,
		Identity:  resolver.Resolve(ctx, project.Dir),
		Command:   command,
		Operation: command,
	}

	if skipped := engine.Gate(ctx, task); skipped != nil {
		c.record(skipped)
		return
	}

	switch command {
	case CommandStatus:
		c.record(engine.Run(ctx, task.WithOperation(runtime.OpPs, c.compose.Ps(project.Dir, project.ComposeFile, task.Identity))))
	case CommandCheck:
		c.record(c.check(ctx, engine, task, project))
	case CommandInactiveOn, CommandInactiveOff:
		c.record(c.setInactive(ctx, engine, task, project, command == CommandInactiveOn))
	case CommandUpdate:
		c.update(ctx, engine, task, project)
	case CommandPull:
		c.withHooks(ctx, engine, task, func() *report.Run {
			return engine.Run(ctx, task.WithOperation(runtime.OpPull, c.compose.Pull(project.Dir, project.ComposeFile, task.Identity)))
		})
	case CommandUp:
		c.withHooks(ctx, engine, task, func() *report.Run {
			return engine.Run(ctx, task.WithOperation(runtime.OpUp, c.compose.Up(project.Dir, project.ComposeFile, task.Identity)))
		})
	case CommandRestart:
		c.withHooks(ctx, engine, task, func() *report.Run {
			return engine.Run(ctx, task.WithOperation(runtime.OpRestart, c.compose.Restart(project.Dir, project.ComposeFile, task.Identity)))
		})
	case CommandDown:
		c.withHooks(ctx, engine, task, func() *report.Run {
			return engine.Run(ctx, task.WithOperation(runtime.OpDown, c.compose.Down(project.Dir, project.ComposeFile, task.Identity)))
		})
	}
}

// withHooks runs the default action between the pre and post hooks of the command. The hooks are
// additive: a failed pre hook does not block the action, the post hook runs after a successful action.
// An interrupt stops the sequence before the next step.
func (c *Controller) withHooks(ctx context.Context, engine *Engine, task Task, action func() *report.Run) {
	c.runHook(ctx, engine, task, hooks.PhasePre)

	if c.interrupted.Load() {
		return
	}

	if run := c.record(action()); run.GetResult() != report.ResultSucceeded || c.interrupted.Load() {
		return
	}

	c.runHook(ctx, engine, task, hooks.PhasePost)
}

func (c *Controller) runHook(ctx context.Context, engine *Engine, task Task, phase hooks.Phase) {
	hook, ok := c.hooks.Lookup(phase, task.Command, task.Name)
	if !ok {
		return
	}

	c.record(engine.RunHook(ctx, task.WithOperation("hook "+hook.Name(), task.Spec), hook))
}

// update runs the post-update hook of the project instead of the default update when the hook
// is active, whatever its outcome. Otherwise it pulls, and brings the project up only after a
// successful pull.
func (c *Controller) update(ctx context.Context, engine *Engine, task Task, project *discovery.Project) {
	c.runHook(ctx, engine, task, hooks.PhasePre)

	if c.interrupted.Load() {
		return
	}

	if hook, ok := c.hooks.Lookup(hooks.PhasePost, CommandUpdate, project.Name); ok {
		c.record(engine.RunHook(ctx, task.WithOperation("update via "+hook.Name(), task.Spec), hook))
		return
	}

	pull := c.record(engine.Run(ctx, task.WithOperation(runtime.OpPull, c.compose.Pull(project.Dir, project.ComposeFile, task.Identity))))
	if pull.GetResult() != report.ResultSucceeded {
		c.record(report.NewRun(task.Name, runtime.OpUp).End(report.ResultSkipped, report.WithReason(report.ReasonPullFailed), report.WithIdentity(task.Identity)))
		return
	}

	if c.interrupted.Load() {
		return
	}

	c.record(engine.Run(ctx, task.WithOperation(runtime.OpUp, c.compose.Up(project.Dir, project.ComposeFile, task.Identity))))
}

func (c *Controller) setInactive(ctx context.Context, engine *Engine, task Task, project *discovery.Project, inactive bool) *report.Run {
	operation, description := "inactive off", "remove "+project.InactiveMarkerPath()
	if inactive {
		operation, description = "inactive on", "create "+project.InactiveMarkerPath()
	}

	return engine.RunAction(ctx, task.WithOperation(operation, task.Spec), description, "", func(context.Context) error {
		return project.SetInactive(inactive)
	})
}

// prune removes unused runtime resources. It is one operation for the whole runtime, not per project.
func (c *Controller) prune(ctx context.Context, engine *Engine) {
	task := Task{Name: runtimeTaskName, Command: CommandPrune, Operation: CommandPrune}

	c.record(engine.RunAction(ctx, task, "prune unused images, networks and volumes", "", func(ctx context.Context) error {
		if c.runtime == nil {
			return errors.Errorf("container runtime is not available")
		}

		pruneReport, err := c.runtime.Prune(ctx)
		if pruneReport != nil {
			c.logger.Infof("Pruned %d images, %d networks, %d volumes, reclaimed %d bytes",
				pruneReport.ImagesDeleted, pruneReport.NetworksDeleted, pruneReport.VolumesDeleted, pruneReport.SpaceReclaimed)
		}

		if err != nil {
			c.logger.Errorf("Prune failed: %v", err)
		}

		return err
	}))
}

// finish renders the summary, writes the report file and returns the error carrying the exit code.
func (c *Controller) finish(remaining int) error {
	if err := c.report.WriteSummary(c.opts.Writer); err != nil {
		c.logger.Warnf("Failed to write summary: %v", err)
	}

	if c.opts.ReportFile != "" {
		if err := c.report.WriteToFile(c.opts.ReportFile); err != nil {
			c.logger.Errorf("Failed to write report %s: %v", c.opts.ReportFile, err)
		} else {
			c.logger.Debugf("Report written to %s", c.opts.ReportFile)
		}
	}

	if c.opts.ReportSchemaFile != "" {
		if err := report.WriteSchemaToFile(c.opts.ReportSchemaFile); err != nil {
			c.logger.Errorf("Failed to write report schema %s: %v", c.opts.ReportSchemaFile, err)
		}
	}

	if c.interrupted.Load() {
		return errors.New(InterruptedError{Remaining: remaining})
	}

	if failed := c.report.Results(report.ResultFailed); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, run := range failed {
			names = append(names, fmt.Sprintf("%s %s", run.Project, run.Operation))
		}

		return errors.New(OperationsFailedError{Projects: names})
	}

	return nil
}
