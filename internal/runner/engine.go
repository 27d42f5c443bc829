package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/hooks"
	"github.com/gruntwork-io/compose-fleet/internal/os/exec"
	"github.com/gruntwork-io/compose-fleet/internal/report"
	"github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
	"github.com/mgutz/ansi"
)

const dryRunPrefix = "[dry-run]"

// Task is one operation on one project.
type Task struct {
	// Name is the project name, the base name of Dir.
	Name string
	// Dir is the absolute project directory.
	Dir string
	// Identity is the resolved compose project label.
	Identity string
	// Command is the fleet command the operation belongs to.
	Command string
	// Operation labels the operation in the output and the report.
	Operation string
	// Spec is the process to run, if the operation runs one.
	Spec runtime.CommandSpec
}

// WithOperation returns a copy of the task for another operation.
func (task Task) WithOperation(operation string, spec runtime.CommandSpec) Task {
	task.Operation = operation
	task.Spec = spec

	return task
}

func (task Task) newRun() *report.Run {
	return report.NewRun(task.Name, task.Operation)
}

// EngineOptions configure an Engine.
type EngineOptions struct {
	Stdout io.Writer
	Stderr io.Writer
	// Timeout bounds every operation, zero means no limit.
	Timeout     time.Duration
	DryRun      bool
	RunningOnly bool
	Color       bool
}

// Engine runs single operations and classifies their outcomes. An engine serves one command:
// whether a project is running is queried once and remembered.
type Engine struct {
	logger   log.Logger
	executor runtime.Executor
	runtime  runtime.Runtime
	running  map[string]bool
	header   func(string) string
	success  func(string) string
	failure  func(string) string
	skipped  func(string) string
	opts     EngineOptions
}

// NewEngine returns an engine running processes through the executor and querying running
// containers through the runtime.
func NewEngine(l log.Logger, executor runtime.Executor, rt runtime.Runtime, opts EngineOptions) *Engine {
	engine := &Engine{
		logger:   l,
		executor: executor,
		runtime:  rt,
		running:  make(map[string]bool),
		opts:     opts,
	}

	if opts.Stdout == nil {
		engine.opts.Stdout = io.Discard
	}

	if opts.Stderr == nil {
		engine.opts.Stderr = engine.opts.Stdout
	}

	noColor := func(s string) string { return s }
	engine.header, engine.success, engine.failure, engine.skipped = noColor, noColor, noColor, noColor

	if opts.Color {
		engine.header = ansi.ColorFunc("cyan+b")
		engine.success = ansi.ColorFunc("green+b")
		engine.failure = ansi.ColorFunc("red+b")
		engine.skipped = ansi.ColorFunc("blue+b")
	}

	return engine
}

// Gate applies the running-only mode: a mutating operation on a project without running containers
// is skipped. It returns the skipped outcome, or nil when the operation may proceed.
func (engine *Engine) Gate(ctx context.Context, task Task) *report.Run {
	if !engine.opts.RunningOnly || !IsMutating(task.Command) || task.Identity == "" {
		return nil
	}

	running, err := engine.isRunning(ctx, task.Identity)
	if err != nil {
		engine.projectLogger(task).Errorf("Failed to query running containers: %v", err)
		return engine.result(task, task.newRun().End(report.ResultFailed, report.WithReason(report.ReasonQueryFailed), report.WithIdentity(task.Identity)))
	}

	if running {
		return nil
	}

	return engine.result(task, task.newRun().End(report.ResultSkipped, report.WithReason(report.ReasonNotRunning), report.WithIdentity(task.Identity)))
}

func (engine *Engine) isRunning(ctx context.Context, identity string) (bool, error) {
	if running, ok := engine.running[identity]; ok {
		return running, nil
	}

	if engine.runtime == nil {
		return false, errors.Errorf("container runtime is not available")
	}

	containers, err := engine.runtime.RunningContainers(ctx, identity)
	if err != nil {
		return false, err
	}

	engine.running[identity] = len(containers) > 0

	return len(containers) > 0, nil
}

// Run runs the task's command spec. The output of a pull is inspected to tell whether images changed.
func (engine *Engine) Run(ctx context.Context, task Task) *report.Run {
	var captured *bytes.Buffer

	return engine.execute(ctx, task, task.Spec.String(), report.ReasonNotStarted, func(ctx context.Context) error {
		opts := runtime.ExecOptions{
			Stdout:  engine.opts.Stdout,
			Stderr:  engine.opts.Stderr,
			Timeout: engine.opts.Timeout,
		}

		if task.Operation == runtime.OpPull {
			captured = new(bytes.Buffer)
			opts.Stdout = io.MultiWriter(opts.Stdout, captured)
			opts.Stderr = io.MultiWriter(opts.Stderr, captured)
		}

		return engine.executor.Execute(ctx, task.Spec, opts)
	}, func(run *report.Run) {
		if captured != nil {
			report.WithReason(ClassifyPull(captured.String()))(run)
		}
	})
}

// RunHook runs the hook for the task's project.
func (engine *Engine) RunHook(ctx context.Context, task Task, hook hooks.Hook) *report.Run {
	description := fmt.Sprintf("hook %s %s %s", hook.Name(), task.Name, task.Dir)

	return engine.execute(ctx, task, description, report.ReasonHookFailed, func(ctx context.Context) error {
		return hook.Run(ctx, task.Name, task.Dir)
	}, nil)
}

// RunAction runs an operation performed in-process, e.g. a validation or a marker change.
// The description is printed in dry-run mode instead of running the action.
func (engine *Engine) RunAction(ctx context.Context, task Task, description string, failReason report.Reason, action func(ctx context.Context) error) *report.Run {
	return engine.execute(ctx, task, description, failReason, action, nil)
}

func (engine *Engine) execute(ctx context.Context, task Task, description string, failReason report.Reason, fn func(ctx context.Context) error, onSuccess func(run *report.Run)) *report.Run {
	if skipped := engine.Gate(ctx, task); skipped != nil {
		return skipped
	}

	if engine.opts.DryRun {
		fmt.Fprintf(engine.opts.Stdout, "%s %s\n", dryRunPrefix, description)
		return task.newRun().End(report.ResultSucceeded, report.WithReason(report.ReasonDryRun), report.WithIdentity(task.Identity))
	}

	fmt.Fprintf(engine.opts.Stdout, "%s\n", engine.header(fmt.Sprintf("==> %s: %s", task.Name, task.Operation)))
	engine.projectLogger(task).Debugf("Running %s", description)

	run := task.newRun()

	if err := fn(ctx); err != nil {
		engine.projectLogger(task).Debugf("%s failed: %v", task.Operation, err)
		return engine.result(task, run.End(report.ResultFailed, failureOptions(err, failReason, task.Identity)...))
	}

	run.End(report.ResultSucceeded, report.WithIdentity(task.Identity))

	if onSuccess != nil {
		onSuccess(run)
	}

	return engine.result(task, run)
}

// failureOptions classifies an error: process failures carry the exit code, timeouts are flagged,
// a process that could not be started gets the "not started" reason.
func failureOptions(err error, failReason report.Reason, identity string) []report.EndOption {
	opts := []report.EndOption{report.WithIdentity(identity)}

	var execErr exec.ExecutionError
	if !errors.As(err, &execErr) {
		if failReason != "" {
			opts = append(opts, report.WithReason(failReason))
		}

		return opts
	}

	opts = append(opts, report.WithExitCode(execErr.ExitCode), report.WithTimedOut(execErr.TimedOut))

	switch {
	case execErr.ExitCode == exec.ExitCodeNotStarted:
		opts = append(opts, report.WithReason(report.ReasonNotStarted))
	case failReason != "" && failReason != report.ReasonNotStarted:
		opts = append(opts, report.WithReason(failReason))
	}

	return opts
}

// result prints the result line of the run and returns it.
func (engine *Engine) result(task Task, run *report.Run) *report.Run {
	var line string

	switch run.GetResult() {
	case report.ResultSucceeded:
		line = engine.success(fmt.Sprintf("<== %s: %s succeeded", task.Name, task.Operation))
	case report.ResultFailed:
		line = engine.failure(fmt.Sprintf("<== %s: %s failed", task.Name, task.Operation))
	case report.ResultSkipped:
		line = engine.skipped(fmt.Sprintf("<== %s: %s skipped", task.Name, task.Operation))
	}

	if detail := run.Detail(); detail != "" {
		line += " (" + detail + ")"
	}

	fmt.Fprintln(engine.opts.Stdout, line)

	return run
}

func (engine *Engine) projectLogger(task Task) log.Logger {
	return engine.logger.WithField(log.FieldKeyProject, task.Name)
}
