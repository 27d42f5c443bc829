package runner_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gruntwork-io/compose-fleet/internal/os/exec"
	"github.com/gruntwork-io/compose-fleet/internal/report"
	"github.com/gruntwork-io/compose-fleet/internal/runner"
	"github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
	"github.com/stretchr/testify/require"
)

const testComposeFile = "services:\n  app:\n    image: nginx:alpine\n"

// fakeExecutor records the executed specs. Results and output are keyed by "<project dir name> <operation>",
// where the operation is the compose subcommand or the hook script name.
type fakeExecutor struct {
	results   map[string]error
	output    map[string]string
	onExecute func(key string)
	calls     []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		results: make(map[string]error),
		output:  make(map[string]string),
	}
}

func (executor *fakeExecutor) Execute(_ context.Context, spec runtime.CommandSpec, opts runtime.ExecOptions) error {
	key := filepath.Base(spec.Dir) + " " + operationOf(spec)
	executor.calls = append(executor.calls, key)

	if out, ok := executor.output[key]; ok && opts.Stdout != nil {
		_, _ = io.WriteString(opts.Stdout, out)
	}

	if executor.onExecute != nil {
		executor.onExecute(key)
	}

	return executor.results[key]
}

func operationOf(spec runtime.CommandSpec) string {
	if i := slices.Index(spec.Args, "-p"); i >= 0 && i+2 < len(spec.Args) {
		return spec.Args[i+2]
	}

	return filepath.Base(spec.Program)
}

func exitError(code int) error {
	return exec.ExecutionError{Command: "docker", ExitCode: code}
}

func quietLogger() log.Logger {
	return log.New(log.WithOutput(io.Discard))
}

// newTestRoot creates a root directory holding one compose project per name.
func newTestRoot(t *testing.T, names ...string) string {
	t.Helper()

	root := t.TempDir()

	for _, name := range names {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "compose.yaml"), []byte(testComposeFile), 0o644))
	}

	return root
}

func writeHook(t *testing.T, root, name string) {
	t.Helper()

	dir := filepath.Join(root, options.DefaultHooksDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755))
}

func newTestController(t *testing.T, root string, executor runtime.Executor, rt runtime.Runtime, configure func(opts *options.FleetOptions)) (*runner.Controller, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	opts := options.NewFleetOptionsWithWriters(&out, &out)
	opts.RootDir = root
	opts.NoColor = true

	if configure != nil {
		configure(opts)
	}

	controller, err := runner.NewController(quietLogger(), opts, rt, executor)
	require.NoError(t, err)

	return controller, &out
}

type outcome struct {
	project   string
	operation string
	result    report.Result
	detail    string
}

func outcomesOf(r *report.Report) []outcome {
	outcomes := make([]outcome, 0, len(r.Runs))

	for _, run := range r.Runs {
		outcomes = append(outcomes, outcome{run.Project, run.Operation, run.GetResult(), run.Detail()})
	}

	return outcomes
}
