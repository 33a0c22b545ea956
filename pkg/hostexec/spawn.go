package hostexec

import (
	"fmt"
	"os"
	"os/exec"
)

// Spawner starts and observes detached background processes. The installer
// uses it for the single fire-and-forget daemon launch; it never supervises
// what it spawns.
type Spawner interface {
	// SpawnDetached starts the command in its own session with stdio
	// discarded and returns the child PID. The child outlives the
	// installer.
	SpawnDetached(cmd Command) (int, error)

	// Alive reports whether the process with the given PID still exists.
	Alive(pid int) bool
}

// ProcSpawner is the production Spawner backed by os/exec.
type ProcSpawner struct{}

// NewSpawner returns a Spawner backed by the real host.
func NewSpawner() *ProcSpawner {
	return &ProcSpawner{}
}

// SpawnDetached starts the command detached from the installer's session.
func (s *ProcSpawner) SpawnDetached(cmd Command) (int, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdin = nil
	c.Stdout = nil
	c.Stderr = nil
	c.SysProcAttr = detachedProcAttr()

	if err := c.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	pid := c.Process.Pid

	// Release so the child is not reaped through us. Orphan cleanup is
	// the init system's job once the installer exits.
	if err := c.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release process %d: %w", pid, err)
	}
	return pid, nil
}

// Alive reports process existence via a null signal.
func (s *ProcSpawner) Alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return signalAlive(proc)
}
