// Package report collects the outcomes of the operations of a run and renders them as a summary
// or writes them to a report file.
package report

import (
	"strconv"
	"sync"
	"time"
)

// Result is the class of an outcome.
type Result string

const (
	ResultSucceeded Result = "succeeded"
	ResultFailed    Result = "failed"
	ResultSkipped   Result = "skipped"
)

// Reason annotates an outcome.
type Reason string

const (
	ReasonDryRun       Reason = "[dry-run]"
	ReasonNotRunning   Reason = "not running"
	ReasonPullFailed   Reason = "pull failed"
	ReasonChangesFound Reason = "changes found"
	ReasonUpToDate     Reason = "up to date"
	ReasonHookFailed   Reason = "hook failed"
	ReasonNotStarted   Reason = "not started"
	ReasonCheckFailed  Reason = "check failed"
	ReasonQueryFailed  Reason = "runtime query failed"
)

// Report accumulates the outcomes of a run.
type Report struct {
	Runs []*Run

	mu          sync.RWMutex
	shouldColor bool
}

// Run is the outcome of one operation on one project.
type Run struct {
	Started time.Time
	Ended   time.Time
	Reason  *Reason
	// ExitCode is set for operations that ran an external process and failed.
	ExitCode *int
	// Project is the base name of the project directory.
	Project string
	// Identity is the compose project label the operation used.
	Identity string
	// Operation is a human label of the operation, e.g. "pull" or "hook post-update_web.sh".
	Operation string
	Result    Result
	TimedOut  bool

	mu sync.RWMutex
}

// Option configures a Report.
type Option func(*Report)

// WithColor enables colors in the summary.
func WithColor(shouldColor bool) Option {
	return func(r *Report) {
		r.shouldColor = shouldColor
	}
}

// NewReport creates a new report.
func NewReport(opts ...Option) *Report {
	r := &Report{
		Runs: make([]*Run, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewRun starts a run of the operation on the project.
func NewRun(project, operation string) *Run {
	return &Run{
		Project:   project,
		Operation: operation,
		Started:   time.Now(),
	}
}

// AddRun records the run. The same project may appear several times with different operations.
func (r *Report) AddRun(run *Run) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Runs = append(r.Runs, run)
}

// Results returns the runs with the given result, in the order they were added.
func (r *Report) Results(result Result) []*Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var runs []*Run

	for _, run := range r.Runs {
		if run.GetResult() == result {
			runs = append(runs, run)
		}
	}

	return runs
}

// HasFailures reports whether any run failed.
func (r *Report) HasFailures() bool {
	return len(r.Results(ResultFailed)) > 0
}

// EndOption are optional configurations for ending a run.
type EndOption func(*Run)

// WithReason sets the reason of a run.
func WithReason(reason Reason) EndOption {
	return func(run *Run) {
		run.Reason = &reason
	}
}

// WithExitCode sets the exit code of the failed process.
func WithExitCode(code int) EndOption {
	return func(run *Run) {
		run.ExitCode = &code
	}
}

// WithTimedOut marks the run as ended by its timeout.
func WithTimedOut(timedOut bool) EndOption {
	return func(run *Run) {
		run.TimedOut = timedOut
	}
}

// WithIdentity sets the compose project label used by the run.
func WithIdentity(identity string) EndOption {
	return func(run *Run) {
		run.Identity = identity
	}
}

// End ends the run with the given result.
func (run *Run) End(result Result, opts ...EndOption) *Run {
	run.mu.Lock()
	defer run.mu.Unlock()

	run.Ended = time.Now()
	run.Result = result

	for _, opt := range opts {
		opt(run)
	}

	return run
}

// GetResult returns the result of the run.
func (run *Run) GetResult() Result {
	run.mu.RLock()
	defer run.mu.RUnlock()

	return run.Result
}

// Detail renders the exit code, timeout and reason of the run, e.g. "exit code 124 (timeout)".
func (run *Run) Detail() string {
	run.mu.RLock()
	defer run.mu.RUnlock()

	var detail string

	if run.ExitCode != nil {
		detail = "exit code " + strconv.Itoa(*run.ExitCode)
	}

	if run.TimedOut {
		detail = joinDetail(detail, "(timeout)")
	}

	if run.Reason != nil {
		detail = joinDetail(detail, string(*run.Reason))
	}

	return detail
}

func joinDetail(detail, str string) string {
	if detail == "" {
		return str
	}

	return detail + " " + str
}
