package runtime

import (
	"strings"

	"github.com/google/shlex"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
)

// DefaultComposeCommand is the compose CLI used when none is configured.
const DefaultComposeCommand = "docker compose"

// Compose operations.
const (
	OpPs      = "ps"
	OpPull    = "pull"
	OpUp      = "up"
	OpRestart = "restart"
	OpDown    = "down"
)

// CommandSpec describes one external process: the program, its arguments and where to run it.
type CommandSpec struct {
	Env     map[string]string
	Program string
	Dir     string
	Args    []string
}

// String renders the command line with shell quoting, for logs and dry-run output.
func (spec CommandSpec) String() string {
	parts := make([]string, 0, len(spec.Args)+1)
	parts = append(parts, quote(spec.Program))

	for _, arg := range spec.Args {
		parts = append(parts, quote(arg))
	}

	return strings.Join(parts, " ")
}

func quote(str string) string {
	if str == "" {
		return "''"
	}

	if !strings.ContainsAny(str, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return str
	}

	return "'" + strings.ReplaceAll(str, "'", `'\''`) + "'"
}

// Compose builds command specs for the compose CLI.
type Compose struct {
	command []string
}

// NewCompose parses the compose command line, e.g. "docker compose" or "podman-compose".
func NewCompose(command string) (*Compose, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultComposeCommand
	}

	parts, err := shlex.Split(command)
	if err != nil {
		return nil, errors.Errorf("invalid compose command %q: %w", command, err)
	}

	if len(parts) == 0 {
		return nil, errors.Errorf("invalid compose command %q", command)
	}

	return &Compose{command: parts}, nil
}

// Spec returns the command running the compose operation against the given file with the given project label.
func (compose *Compose) Spec(dir, composeFile, project string, args ...string) CommandSpec {
	cmdArgs := make([]string, 0, len(compose.command)+len(args)+4)
	cmdArgs = append(cmdArgs, compose.command[1:]...)
	cmdArgs = append(cmdArgs, "-f", composeFile, "-p", project)
	cmdArgs = append(cmdArgs, args...)

	return CommandSpec{
		Program: compose.command[0],
		Args:    cmdArgs,
		Dir:     dir,
	}
}

// Ps lists the project's containers.
func (compose *Compose) Ps(dir, composeFile, project string) CommandSpec {
	return compose.Spec(dir, composeFile, project, OpPs)
}

// Pull pulls the project's images.
func (compose *Compose) Pull(dir, composeFile, project string) CommandSpec {
	return compose.Spec(dir, composeFile, project, OpPull)
}

// Up creates and starts the project's containers in the background.
func (compose *Compose) Up(dir, composeFile, project string) CommandSpec {
	return compose.Spec(dir, composeFile, project, OpUp, "-d")
}

// Restart restarts the project's containers.
func (compose *Compose) Restart(dir, composeFile, project string) CommandSpec {
	return compose.Spec(dir, composeFile, project, OpRestart)
}

// Down stops and removes the project's containers.
func (compose *Compose) Down(dir, composeFile, project string) CommandSpec {
	return compose.Spec(dir, composeFile, project, OpDown)
}
