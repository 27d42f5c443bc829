// Package runner executes fleet commands over the selected projects.
//
// The Controller drives a command: it discovers and filters the projects, then runs the operations of
// each project one after another through the Engine, records every outcome in a report and renders the
// summary. An interrupt never stops a running process, the controller stops between projects.
package runner

import "slices"

// Commands.
const (
	CommandList        = "list"
	CommandStatus      = "status"
	CommandCheck       = "check"
	CommandPull        = "pull"
	CommandUp          = "up"
	CommandUpdate      = "update"
	CommandRestart     = "restart"
	CommandDown        = "down"
	CommandPrune       = "prune"
	CommandInactiveOn  = "inactive-on"
	CommandInactiveOff = "inactive-off"
)

// Exit codes of the fleet process.
const (
	ExitCodeSuccess      = 0
	ExitCodeGeneralError = 1
	ExitCodeFailures     = 2
	ExitCodeInterrupted  = 130
)

var mutatingCommands = []string{
	CommandPull,
	CommandUpdate,
	CommandRestart,
	CommandDown,
	CommandUp,
	CommandPrune,
}

var runCommands = []string{
	CommandStatus,
	CommandCheck,
	CommandPull,
	CommandUp,
	CommandUpdate,
	CommandRestart,
	CommandDown,
	CommandPrune,
	CommandInactiveOn,
	CommandInactiveOff,
}

// IsMutating reports whether the command changes the state of running containers.
func IsMutating(command string) bool {
	return slices.Contains(mutatingCommands, command)
}

// IsRunCommand reports whether the controller can run the command.
func IsRunCommand(command string) bool {
	return slices.Contains(runCommands, command)
}
