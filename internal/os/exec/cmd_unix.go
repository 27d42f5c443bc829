//go:build !windows

package exec

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup starts the command in its own process group, so that signals reach every process
// it spawns and a Ctrl-C in the terminal does not hit it mid-operation.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalProcessGroup(process *os.Process, sig os.Signal) error {
	if process == nil {
		return nil
	}

	if sysSig, ok := sig.(syscall.Signal); ok {
		if err := syscall.Kill(-process.Pid, sysSig); err == nil {
			return nil
		}
	}

	return process.Signal(sig)
}
