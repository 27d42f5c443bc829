//go:build windows

package signal

import (
	"os"
)

// TerminateSignal is nil on Windows, processes cannot be asked to terminate gracefully.
var TerminateSignal os.Signal = nil

// InterruptSignals contains a list of signals that are treated as interrupts.
var InterruptSignals = []os.Signal{os.Interrupt}
