// Package options provides the set of options that configure the behavior of the fleet program.
package options

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gruntwork-io/compose-fleet/internal/discovery"
	"github.com/gruntwork-io/compose-fleet/internal/filter"
	"github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
)

const (
	// DefaultHooksDirName is the hooks directory under the root unless configured otherwise.
	// It is hidden, so it is never discovered as a project.
	DefaultHooksDirName = ".hooks"

	// DefaultLogFile is the log file unless configured otherwise.
	DefaultLogFile = "~/.local/state/compose-fleet/fleet.log"

	// FallbackLogFilename is the log file in the temp dir, used when the configured one is unwritable.
	FallbackLogFilename = "fleet.log"

	defaultLogLevel = log.InfoLevel
)

// FleetOptions represents options that configure the behavior of the fleet program.
type FleetOptions struct {
	Logger    log.Logger
	Writer    io.Writer
	ErrWriter io.Writer

	// RootDir is the directory whose subdirectories are the projects.
	RootDir string
	// InactiveMarker is the filename marking a project inactive.
	InactiveMarker string

	// ComposeCommand is the compose CLI, split like a shell command line.
	ComposeCommand string
	// DockerHost overrides the Docker daemon address, empty uses DOCKER_HOST.
	DockerHost string

	// HooksDir holds the hook scripts, empty means `<root>/.hooks`.
	HooksDir      string
	HooksExt      string
	HooksDisabled bool

	LogDisabled bool
	LogFile     string
	LogLevel    log.Level

	// ReportFile receives the outcome report, CSV or JSON by extension.
	ReportFile string

	// ReportSchemaFile receives the JSON schema of the report.
	ReportSchemaFile string

	// RunID identifies the invocation in the log file.
	RunID string

	Filter filter.Config

	// Timeout bounds every external operation, zero means no limit.
	Timeout time.Duration

	DryRun     bool
	PruneAfter bool
	NoColor    bool
	NoLock     bool
}

// NewFleetOptions returns the options with default values.
func NewFleetOptions() *FleetOptions {
	return NewFleetOptionsWithWriters(os.Stdout, os.Stderr)
}

// NewFleetOptionsWithWriters returns the options with default values and the given writers.
func NewFleetOptionsWithWriters(stdout, stderr io.Writer) *FleetOptions {
	return &FleetOptions{
		Logger:         log.New(log.WithOutput(stderr), log.WithLevel(defaultLogLevel)),
		Writer:         stdout,
		ErrWriter:      stderr,
		RootDir:        ".",
		InactiveMarker: discovery.DefaultInactiveMarker,
		ComposeCommand: runtime.DefaultComposeCommand,
		HooksExt:       "sh",
		LogFile:        DefaultLogFile,
		LogLevel:       defaultLogLevel,
	}
}

// HooksDirOrDefault returns the hooks directory, defaulting to `<root>/.hooks`.
func (opts *FleetOptions) HooksDirOrDefault() string {
	if opts.HooksDir != "" {
		return opts.HooksDir
	}

	return filepath.Join(opts.RootDir, DefaultHooksDirName)
}

// FallbackLogFile returns the log file used when LogFile is unwritable.
func (opts *FleetOptions) FallbackLogFile() string {
	return filepath.Join(os.TempDir(), FallbackLogFilename)
}
