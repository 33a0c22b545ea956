//go:build windows

package hostexec

import (
	"os"
	"syscall"
)

func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x00000008, // DETACHED_PROCESS
	}
}

func signalAlive(proc *os.Process) bool {
	// On Windows FindProcess opens a real handle, so it fails once the
	// process is gone.
	p, err := os.FindProcess(proc.Pid)
	if err != nil {
		return false
	}
	p.Release()
	return true
}
