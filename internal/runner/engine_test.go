package runner_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/os/exec"
	"github.com/gruntwork-io/compose-fleet/internal/report"
	"github.com/gruntwork-io/compose-fleet/internal/runner"
	"github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTask(command, operation string) runner.Task {
	return runner.Task{
		Name:      "api",
		Dir:       "/srv/api",
		Identity:  "api",
		Command:   command,
		Operation: operation,
		Spec:      runtime.CommandSpec{Program: "docker", Args: []string{"compose", "-p", "api", operation}, Dir: "/srv/api"},
	}
}

func TestEngineRunClassifiesFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err      error
		name     string
		expected string
		result   report.Result
	}{
		{name: "success", err: nil, result: report.ResultSucceeded, expected: ""},
		{name: "exit code", err: exitError(2), result: report.ResultFailed, expected: "exit code 2"},
		{name: "not started", err: exec.ExecutionError{ExitCode: exec.ExitCodeNotStarted}, result: report.ResultFailed, expected: "exit code 127 not started"},
		{name: "timeout", err: exec.ExecutionError{ExitCode: exec.ExitCodeTimedOut, TimedOut: true}, result: report.ResultFailed, expected: "exit code 124 (timeout)"},
		{name: "wrapped", err: errors.New(exitError(5)), result: report.ResultFailed, expected: "exit code 5"},
		{name: "other error", err: assert.AnError, result: report.ResultFailed, expected: "not started"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			executor := newFakeExecutor()
			executor.results["api up"] = tc.err

			var out bytes.Buffer

			engine := runner.NewEngine(quietLogger(), executor, nil, runner.EngineOptions{Stdout: &out})
			run := engine.Run(context.Background(), newTask(runner.CommandUp, runtime.OpUp))

			assert.Equal(t, tc.result, run.GetResult())
			assert.Equal(t, tc.expected, run.Detail())
			assert.Equal(t, "api", run.Identity)
			assert.Contains(t, out.String(), "==> api: up")
		})
	}
}

func TestEngineDryRun(t *testing.T) {
	t.Parallel()

	executor := newFakeExecutor()

	var out bytes.Buffer

	engine := runner.NewEngine(quietLogger(), executor, nil, runner.EngineOptions{Stdout: &out, DryRun: true})
	run := engine.Run(context.Background(), newTask(runner.CommandDown, runtime.OpDown))

	assert.Empty(t, executor.calls)
	assert.Equal(t, "[dry-run] docker compose -p api down\n", out.String())
	assert.Equal(t, report.ResultSucceeded, run.GetResult())
}

func TestEngineGate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	rt := runtime.NewMockRuntime(ctrl)

	// one query serves all the operations of a project
	rt.EXPECT().RunningContainers(gomock.Any(), "api").Return(nil, assert.AnError).Times(1)

	engine := runner.NewEngine(quietLogger(), newFakeExecutor(), rt, runner.EngineOptions{RunningOnly: true})

	run := engine.Gate(context.Background(), newTask(runner.CommandUp, runtime.OpUp))
	require.NotNil(t, run)
	assert.Equal(t, report.ResultFailed, run.GetResult())
	assert.Equal(t, "runtime query failed", run.Detail())

	// read-only commands are never gated
	assert.Nil(t, engine.Gate(context.Background(), newTask(runner.CommandStatus, runtime.OpPs)))
}

func TestEngineGateCachesRunningState(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	rt := runtime.NewMockRuntime(ctrl)
	rt.EXPECT().RunningContainers(gomock.Any(), "api").Return([]runtime.Container{{ID: "c1"}}, nil).Times(1)

	executor := newFakeExecutor()
	engine := runner.NewEngine(quietLogger(), executor, rt, runner.EngineOptions{RunningOnly: true})

	assert.Nil(t, engine.Gate(context.Background(), newTask(runner.CommandUpdate, runtime.OpPull)))
	assert.Equal(t, report.ResultSucceeded, engine.Run(context.Background(), newTask(runner.CommandUpdate, runtime.OpPull)).GetResult())
	assert.Equal(t, []string{"api pull"}, executor.calls)
}

func TestValidateComposeFile(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "api")

	services, err := runner.ValidateComposeFile(root + "/api/compose.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, services)

	_, err = runner.ValidateComposeFile(root + "/api/missing.yaml")
	require.Error(t, err)
}

func TestValidateComposeFileSortsServices(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "compose.yaml")
	content := "services:\n  worker:\n    image: busybox\n  db:\n    image: postgres\n  api:\n    build: .\n  cache:\n    image: redis\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	for range 5 {
		services, err := runner.ValidateComposeFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"api", "cache", "db", "worker"}, services)
	}
}

func TestValidateComposeFileRejectsMalformedServices(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{"no services", "services: {}\n", "defines no services"},
		{"empty file", "", "defines no services"},
		{"not yaml", "services: [\n", "not valid YAML"},
		{"no image or build", "services:\n  app:\n    restart: always\n", "not a valid compose file"},
		{"service is a string", "services:\n  app: nginx\n", "not a valid compose file"},
		{"ports not a list", "services:\n  app:\n    image: nginx\n    ports: 80\n", "not a valid compose file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "compose.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := runner.ValidateComposeFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}
