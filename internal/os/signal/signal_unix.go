//go:build !windows

package signal

import (
	"os"
	"syscall"
)

// TerminateSignal is sent to a command whose timeout expired, before it gets killed.
var TerminateSignal os.Signal = syscall.SIGTERM

// InterruptSignals contains a list of signals that are treated as interrupts.
var InterruptSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT}
