package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gruntwork-io/compose-fleet/internal/discovery"
	"github.com/gruntwork-io/compose-fleet/internal/locks"
	"github.com/gruntwork-io/compose-fleet/internal/os/exec"
	"github.com/gruntwork-io/compose-fleet/internal/report"
	"github.com/gruntwork-io/compose-fleet/internal/runner"
	fleetruntime "github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("hook scripts need executable bits")
	}
}

func TestUpdatePullsThenUp(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "web")
	executor := newFakeExecutor()
	executor.output["web pull"] = "a2abf6c4d29d: Pull complete\n"

	controller, _ := newTestController(t, root, executor, nil, nil)

	require.NoError(t, controller.Run(context.Background(), runner.CommandUpdate))

	assert.Equal(t, []string{"api pull", "api up", "web pull", "web up"}, executor.calls)
	assert.Equal(t, []outcome{
		{"api", "pull", report.ResultSucceeded, "up to date"},
		{"api", "up", report.ResultSucceeded, ""},
		{"web", "pull", report.ResultSucceeded, "changes found"},
		{"web", "up", report.ResultSucceeded, ""},
	}, outcomesOf(controller.Report()))
}

func TestUpdateSkipsUpAfterFailedPull(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "web")
	executor := newFakeExecutor()
	executor.results["api pull"] = exitError(1)

	controller, _ := newTestController(t, root, executor, nil, nil)

	err := controller.Run(context.Background(), runner.CommandUpdate)
	require.Error(t, err)

	code, codeErr := exec.GetExitCode(err)
	require.NoError(t, codeErr)
	assert.Equal(t, runner.ExitCodeFailures, code)

	assert.Equal(t, []string{"api pull", "web pull", "web up"}, executor.calls)
	assert.Equal(t, []outcome{
		{"api", "pull", report.ResultFailed, "exit code 1"},
		{"api", "up", report.ResultSkipped, "pull failed"},
		{"web", "pull", report.ResultSucceeded, "up to date"},
		{"web", "up", report.ResultSucceeded, ""},
	}, outcomesOf(controller.Report()))
}

func TestUpdateHookOverridesDefault(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := newTestRoot(t, "api", "web")
	writeHook(t, root, "post-update_api.sh")

	executor := newFakeExecutor()
	executor.results["api post-update_api.sh"] = exitError(3)

	controller, _ := newTestController(t, root, executor, nil, nil)

	err := controller.Run(context.Background(), runner.CommandUpdate)
	require.Error(t, err)

	// the failed hook never falls back to pull and up
	assert.Equal(t, []string{"api post-update_api.sh", "web pull", "web up"}, executor.calls)
	assert.Equal(t, outcome{"api", "update via post-update_api.sh", report.ResultFailed, "exit code 3 hook failed"}, outcomesOf(controller.Report())[0])
}

func TestUpdateHookDisabled(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := newTestRoot(t, "api")
	writeHook(t, root, "post-update_api.sh")

	executor := newFakeExecutor()
	controller, _ := newTestController(t, root, executor, nil, func(opts *options.FleetOptions) {
		opts.HooksDisabled = true
	})

	require.NoError(t, controller.Run(context.Background(), runner.CommandUpdate))
	assert.Equal(t, []string{"api pull", "api up"}, executor.calls)
}

func TestAdditiveHooks(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := newTestRoot(t, "api")
	writeHook(t, root, "pre-down_api.sh")
	writeHook(t, root, "post-down_api.sh")

	executor := newFakeExecutor()
	executor.results["api pre-down_api.sh"] = exitError(1)

	controller, _ := newTestController(t, root, executor, nil, nil)

	err := controller.Run(context.Background(), runner.CommandDown)
	require.Error(t, err)

	assert.Equal(t, []string{"api pre-down_api.sh", "api down", "api post-down_api.sh"}, executor.calls)
	assert.Equal(t, []outcome{
		{"api", "hook pre-down_api.sh", report.ResultFailed, "exit code 1 hook failed"},
		{"api", "down", report.ResultSucceeded, ""},
		{"api", "hook post-down_api.sh", report.ResultSucceeded, ""},
	}, outcomesOf(controller.Report()))
}

func TestPostHookSkippedAfterFailedAction(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := newTestRoot(t, "api")
	writeHook(t, root, "post-restart_api.sh")

	executor := newFakeExecutor()
	executor.results["api restart"] = exitError(1)

	controller, _ := newTestController(t, root, executor, nil, nil)

	require.Error(t, controller.Run(context.Background(), runner.CommandRestart))
	assert.Equal(t, []string{"api restart"}, executor.calls)
}

func TestDryRunNeverExecutes(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	commands := []string{
		runner.CommandStatus,
		runner.CommandCheck,
		runner.CommandPull,
		runner.CommandUp,
		runner.CommandUpdate,
		runner.CommandRestart,
		runner.CommandDown,
		runner.CommandPrune,
		runner.CommandInactiveOn,
	}

	for _, command := range commands {
		t.Run(command, func(t *testing.T) {
			t.Parallel()

			root := newTestRoot(t, "api", "web")
			writeHook(t, root, "post-update_api.sh")
			writeHook(t, root, "pre-down_web.sh")

			executor := newFakeExecutor()
			controller, out := newTestController(t, root, executor, nil, func(opts *options.FleetOptions) {
				opts.DryRun = true
				opts.PruneAfter = true
			})

			require.NoError(t, controller.Run(context.Background(), command))

			assert.Empty(t, executor.calls)
			assert.Contains(t, out.String(), "[dry-run] ")
			assert.NoFileExists(t, filepath.Join(root, "api", discovery.DefaultInactiveMarker))
			assert.NoFileExists(t, filepath.Join(root, locks.LockFilename))

			require.NotEmpty(t, controller.Report().Runs)

			for _, run := range controller.Report().Runs {
				assert.Equal(t, report.ResultSucceeded, run.GetResult())
				assert.Equal(t, "[dry-run]", run.Detail())
			}
		})
	}
}

func TestInterruptStopsBetweenProjects(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "db", "web")
	executor := newFakeExecutor()
	executor.results["api restart"] = exitError(1)

	controller, out := newTestController(t, root, executor, nil, nil)

	executor.onExecute = func(key string) {
		if key == "db restart" {
			controller.Interrupt()
		}
	}

	err := controller.Run(context.Background(), runner.CommandRestart)
	require.Error(t, err)

	code, codeErr := exec.GetExitCode(err)
	require.NoError(t, codeErr)
	assert.Equal(t, runner.ExitCodeInterrupted, code)

	var interruptedErr runner.InterruptedError
	require.ErrorAs(t, err, &interruptedErr)
	assert.Equal(t, 1, interruptedErr.Remaining)

	// the operation in flight completes and is recorded
	assert.Equal(t, []string{"api restart", "db restart"}, executor.calls)
	assert.Len(t, controller.Report().Runs, 2)
	assert.True(t, controller.Interrupted())
	assert.Contains(t, out.String(), "Run Summary")
}

func TestInterruptDuringPullSkipsUp(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "web")
	executor := newFakeExecutor()

	controller, _ := newTestController(t, root, executor, nil, nil)

	executor.onExecute = func(key string) {
		if key == "api pull" {
			controller.Interrupt()
		}
	}

	err := controller.Run(context.Background(), runner.CommandUpdate)
	require.Error(t, err)

	code, codeErr := exec.GetExitCode(err)
	require.NoError(t, codeErr)
	assert.Equal(t, runner.ExitCodeInterrupted, code)

	var interruptedErr runner.InterruptedError
	require.ErrorAs(t, err, &interruptedErr)
	assert.Equal(t, 1, interruptedErr.Remaining)

	assert.Equal(t, []string{"api pull"}, executor.calls)
	assert.Equal(t, []outcome{
		{"api", "pull", report.ResultSucceeded, ""},
	}, outcomesOf(controller.Report()))
}

func TestInterruptDuringActionSkipsPostHook(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := newTestRoot(t, "api")
	writeHook(t, root, "pre-down_api.sh")
	writeHook(t, root, "post-down_api.sh")

	executor := newFakeExecutor()

	controller, _ := newTestController(t, root, executor, nil, nil)

	executor.onExecute = func(key string) {
		if key == "api down" {
			controller.Interrupt()
		}
	}

	err := controller.Run(context.Background(), runner.CommandDown)
	require.Error(t, err)

	assert.Equal(t, []string{"api pre-down_api.sh", "api down"}, executor.calls)
}

func TestInterruptDuringPreHookSkipsAction(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := newTestRoot(t, "api")
	writeHook(t, root, "pre-update_api.sh")

	executor := newFakeExecutor()

	controller, _ := newTestController(t, root, executor, nil, nil)

	executor.onExecute = func(key string) {
		if key == "api pre-update_api.sh" {
			controller.Interrupt()
		}
	}

	err := controller.Run(context.Background(), runner.CommandUpdate)
	require.Error(t, err)

	assert.Equal(t, []string{"api pre-update_api.sh"}, executor.calls)
}

func TestInterruptSkipsPruneAfter(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api")
	ctrl := gomock.NewController(t)
	rt := fleetruntime.NewMockRuntime(ctrl)
	rt.EXPECT().RunningContainers(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	rt.EXPECT().Prune(gomock.Any()).Times(0)

	executor := newFakeExecutor()
	controller, _ := newTestController(t, root, executor, rt, func(opts *options.FleetOptions) {
		opts.PruneAfter = true
	})

	executor.onExecute = func(string) { controller.Interrupt() }

	require.Error(t, controller.Run(context.Background(), runner.CommandUp))
}

func TestRunningOnlySkipsStoppedProjects(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "web")

	ctrl := gomock.NewController(t)
	rt := fleetruntime.NewMockRuntime(ctrl)
	rt.EXPECT().RunningContainers(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, project string) ([]fleetruntime.Container, error) {
			if project == "web" {
				return []fleetruntime.Container{{ID: "c1", Project: "web"}}, nil
			}

			return nil, nil
		}).AnyTimes()

	executor := newFakeExecutor()
	controller, _ := newTestController(t, root, executor, rt, func(opts *options.FleetOptions) {
		opts.Filter.RunningOnly = true
	})

	require.NoError(t, controller.Run(context.Background(), runner.CommandRestart))

	assert.Equal(t, []string{"web restart"}, executor.calls)
	assert.Equal(t, []outcome{
		{"api", "restart", report.ResultSkipped, "not running"},
		{"web", "restart", report.ResultSucceeded, ""},
	}, outcomesOf(controller.Report()))
}

func TestRunningOnlyIgnoredForReadOnlyCommands(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api")

	ctrl := gomock.NewController(t)
	rt := fleetruntime.NewMockRuntime(ctrl)
	rt.EXPECT().RunningContainers(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	executor := newFakeExecutor()
	controller, _ := newTestController(t, root, executor, rt, func(opts *options.FleetOptions) {
		opts.Filter.RunningOnly = true
	})

	require.NoError(t, controller.Run(context.Background(), runner.CommandStatus))
	assert.Equal(t, []string{"api ps"}, executor.calls)
}

func TestIdentityReusesRunningLabel(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "My.App")

	ctrl := gomock.NewController(t)
	rt := fleetruntime.NewMockRuntime(ctrl)
	rt.EXPECT().RunningContainers(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, project string) ([]fleetruntime.Container, error) {
			if project == "my.app" {
				return []fleetruntime.Container{{ID: "c1"}}, nil
			}

			return nil, nil
		}).AnyTimes()

	var specs []fleetruntime.CommandSpec

	executor := executorFunc(func(spec fleetruntime.CommandSpec) error {
		specs = append(specs, spec)
		return nil
	})

	controller, _ := newTestController(t, root, executor, rt, nil)

	require.NoError(t, controller.Run(context.Background(), runner.CommandDown))
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"compose", "-f", filepath.Join(root, "My.App", "compose.yaml"), "-p", "my.app", "down"}, specs[0].Args)
	assert.Equal(t, "my.app", controller.Report().Runs[0].Identity)
}

type executorFunc func(spec fleetruntime.CommandSpec) error

func (fn executorFunc) Execute(_ context.Context, spec fleetruntime.CommandSpec, _ fleetruntime.ExecOptions) error {
	return fn(spec)
}

func TestTimeoutIsReportedAsFailure(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api")
	executor := newFakeExecutor()
	executor.results["api up"] = exec.ExecutionError{ExitCode: exec.ExitCodeKilled, TimedOut: true}

	controller, _ := newTestController(t, root, executor, nil, nil)

	require.Error(t, controller.Run(context.Background(), runner.CommandUp))
	assert.Equal(t, []outcome{
		{"api", "up", report.ResultFailed, "exit code 137 (timeout)"},
	}, outcomesOf(controller.Report()))
	assert.True(t, controller.Report().Runs[0].TimedOut)
}

func TestPruneAfter(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api")

	ctrl := gomock.NewController(t)
	rt := fleetruntime.NewMockRuntime(ctrl)
	rt.EXPECT().RunningContainers(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	rt.EXPECT().Prune(gomock.Any()).Return(&fleetruntime.PruneReport{ImagesDeleted: 2}, nil).Times(1)

	executor := newFakeExecutor()
	controller, _ := newTestController(t, root, executor, rt, func(opts *options.FleetOptions) {
		opts.PruneAfter = true
	})

	require.NoError(t, controller.Run(context.Background(), runner.CommandUp))

	outcomes := outcomesOf(controller.Report())
	require.Len(t, outcomes, 2)
	assert.Equal(t, outcome{"(runtime)", "prune", report.ResultSucceeded, ""}, outcomes[1])
}

func TestPruneIsOneRuntimeOperation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	rt := fleetruntime.NewMockRuntime(ctrl)
	rt.EXPECT().Prune(gomock.Any()).Return(&fleetruntime.PruneReport{}, assert.AnError).Times(1)

	// prune does not need any project
	controller, _ := newTestController(t, t.TempDir(), newFakeExecutor(), rt, nil)

	err := controller.Run(context.Background(), runner.CommandPrune)
	require.Error(t, err)

	var failedErr runner.OperationsFailedError
	require.ErrorAs(t, err, &failedErr)
	assert.Len(t, controller.Report().Runs, 1)
}

func TestSelectErrors(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api")

	controller, _ := newTestController(t, filepath.Join(root, "missing"), newFakeExecutor(), nil, nil)
	err := controller.Run(context.Background(), runner.CommandUp)

	var rootErr discovery.RootNotFoundError
	require.ErrorAs(t, err, &rootErr)

	controller, _ = newTestController(t, t.TempDir(), newFakeExecutor(), nil, nil)
	err = controller.Run(context.Background(), runner.CommandUp)

	var noProjectsErr discovery.NoProjectsDiscoveredError
	require.ErrorAs(t, err, &noProjectsErr)

	controller, _ = newTestController(t, root, newFakeExecutor(), nil, func(opts *options.FleetOptions) {
		opts.Filter.Only = []string{"web"}
	})
	err = controller.Run(context.Background(), runner.CommandUp)

	var filterErr runner.NoProjectsAfterFilterError
	require.ErrorAs(t, err, &filterErr)
	assert.Equal(t, 1, filterErr.Discovered)
	assert.Empty(t, controller.Report().Runs)

	err = controller.Run(context.Background(), "deploy")

	var unknownErr runner.UnknownCommandError
	require.ErrorAs(t, err, &unknownErr)
}

func TestInactiveOnOff(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "web")
	marker := filepath.Join(root, "api", discovery.DefaultInactiveMarker)

	controller, _ := newTestController(t, root, newFakeExecutor(), nil, func(opts *options.FleetOptions) {
		opts.Filter.Projects = []string{"api"}
	})
	require.NoError(t, controller.Run(context.Background(), runner.CommandInactiveOn))
	assert.FileExists(t, marker)

	// inactive projects are excluded by default
	executor := newFakeExecutor()
	controller, _ = newTestController(t, root, executor, nil, nil)
	require.NoError(t, controller.Run(context.Background(), runner.CommandUp))
	assert.Equal(t, []string{"web up"}, executor.calls)

	controller, _ = newTestController(t, root, newFakeExecutor(), nil, nil)
	require.NoError(t, controller.Run(context.Background(), runner.CommandInactiveOff))
	assert.NoFileExists(t, marker)
	assert.Equal(t, []outcome{{"api", "inactive off", report.ResultSucceeded, ""}}, outcomesOf(controller.Report()))
}

func TestCheck(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "web")
	require.NoError(t, os.WriteFile(filepath.Join(root, "web", "compose.yaml"), []byte("services: {}\n"), 0o644))

	controller, out := newTestController(t, root, newFakeExecutor(), nil, nil)

	require.Error(t, controller.Run(context.Background(), runner.CommandCheck))
	assert.Equal(t, []outcome{
		{"api", "check", report.ResultSucceeded, ""},
		{"web", "check", report.ResultFailed, "check failed"},
	}, outcomesOf(controller.Report()))
	assert.Contains(t, out.String(), "api: 1 service(s), identity api, running containers unknown")
}

func TestLockHeldByAnotherRun(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api")

	lockfile := locks.NewLockfile(root)
	require.NoError(t, lockfile.TryLock())

	t.Cleanup(func() { _ = lockfile.Unlock() })

	executor := newFakeExecutor()
	controller, _ := newTestController(t, root, executor, nil, nil)

	err := controller.Run(context.Background(), runner.CommandUp)

	var lockedErr locks.AlreadyLockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.Empty(t, executor.calls)

	// read-only commands and --no-lock do not take the lock
	require.NoError(t, controller.Run(context.Background(), runner.CommandStatus))

	controller, _ = newTestController(t, root, executor, nil, func(opts *options.FleetOptions) {
		opts.NoLock = true
	})
	require.NoError(t, controller.Run(context.Background(), runner.CommandUp))
}

func TestReportFile(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api")
	reportFile := filepath.Join(t.TempDir(), "report.csv")

	controller, _ := newTestController(t, root, newFakeExecutor(), nil, func(opts *options.FleetOptions) {
		opts.ReportFile = reportFile
	})

	require.NoError(t, controller.Run(context.Background(), runner.CommandUp))

	data, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api,api,up,")
}

func TestJSONReportFileWithSchema(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "web")
	dir := t.TempDir()
	reportFile := filepath.Join(dir, "report.json")
	schemaFile := filepath.Join(dir, "schema.json")

	executor := newFakeExecutor()
	executor.results["web pull"] = exitError(1)

	controller, _ := newTestController(t, root, executor, nil, func(opts *options.FleetOptions) {
		opts.ReportFile = reportFile
		opts.ReportSchemaFile = schemaFile
	})

	require.Error(t, controller.Run(context.Background(), runner.CommandUpdate))

	data, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	require.NoError(t, report.ValidateJSONReport(data))
	assert.Contains(t, string(data), `"Reason": "pull failed"`)

	assert.FileExists(t, schemaFile)
}

func TestList(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api", "web")

	ctrl := gomock.NewController(t)
	rt := fleetruntime.NewMockRuntime(ctrl)
	rt.EXPECT().RunningContainers(gomock.Any(), "api").Return([]fleetruntime.Container{{ID: "1"}, {ID: "2"}}, nil).AnyTimes()
	rt.EXPECT().RunningContainers(gomock.Any(), "web").Return(nil, assert.AnError).AnyTimes()

	controller, _ := newTestController(t, root, newFakeExecutor(), rt, nil)

	infos, err := controller.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "api", infos[0].Identity)
	assert.Equal(t, 2, infos[0].Running)
	assert.Equal(t, "web", infos[1].Identity)
	assert.Equal(t, -1, infos[1].Running)
}

func TestHooksRunFromRelativeRoot(t *testing.T) {
	skipOnWindows(t)

	root := newTestRoot(t, "api")
	writeHook(t, root, "post-update_api.sh")

	t.Chdir(root)

	executor := fleetruntime.NewProcessExecutor(quietLogger())
	controller, _ := newTestController(t, ".", executor, nil, nil)

	require.NoError(t, controller.Run(context.Background(), runner.CommandUpdate))
	assert.Equal(t, []outcome{
		{"api", "update via post-update_api.sh", report.ResultSucceeded, ""},
	}, outcomesOf(controller.Report()))
}
