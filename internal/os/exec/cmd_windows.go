//go:build windows

package exec

import (
	"os"
	"os/exec"
)

func setProcessGroup(_ *exec.Cmd) {}

func signalProcessGroup(process *os.Process, sig os.Signal) error {
	if process == nil {
		return nil
	}

	return process.Signal(sig)
}
