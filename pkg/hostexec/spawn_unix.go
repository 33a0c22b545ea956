//go:build !windows

package hostexec

import (
	"os"
	"syscall"
)

func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

func signalAlive(proc *os.Process) bool {
	// Signal 0 performs the permission and existence checks without
	// delivering anything.
	return proc.Signal(syscall.Signal(0)) == nil
}
