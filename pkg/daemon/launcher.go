// Package daemon launches the agent framework's background process and
// performs the one-shot liveness check. The daemon is fire-and-forget: once
// the installer exits, nothing here supervises it.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/hostexec"
	"github.com/Tolerable/claude-bootstrap/pkg/layout"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Options configures the launch and its liveness window.
type Options struct {
	// PythonCandidates are interpreter names tried in order on PATH.
	PythonCandidates []string

	// StartupWait is how long the daemon is observed before it is
	// considered alive.
	StartupWait time.Duration

	// PollInterval is the process liveness poll cadence.
	PollInterval time.Duration

	// HeartbeatFile is a target-relative path the framework touches once
	// its daemon is serving. Empty leaves only the process check.
	HeartbeatFile string
}

// StartResult describes a completed launch attempt.
type StartResult struct {
	// PID is the daemon process ID.
	PID int

	// Alive reports whether the daemon passed the liveness check.
	Alive bool

	// Signal names which liveness signal fired: "heartbeat" when the
	// framework's heartbeat file appeared, "process" when the process
	// survived the startup wait.
	Signal string
}

// Launcher starts the framework daemon detached from the installer.
type Launcher struct {
	spawner hostexec.Spawner
	runner  hostexec.Runner
	opts    Options
}

// NewLauncher creates a launcher.
func NewLauncher(spawner hostexec.Spawner, runner hostexec.Runner, opts Options) *Launcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 200 * time.Millisecond
	}
	return &Launcher{spawner: spawner, runner: runner, opts: opts}
}

// Start spawns the daemon inside target and waits for a liveness signal
// within the startup bound. A daemon that is not observably alive in time is
// an error; the spawned process is never killed or rolled back.
func (l *Launcher) Start(ctx context.Context, target string) (*StartResult, error) {
	entry := layout.DaemonPath(target)
	if _, err := os.Stat(entry); err != nil {
		return nil, fmt.Errorf("daemon entry point %s not found: %w", layout.DaemonEntry, err)
	}

	python, err := l.findPython()
	if err != nil {
		return nil, err
	}

	pid, err := l.spawner.SpawnDetached(hostexec.Command{
		Path: python,
		Args: []string{entry},
		Dir:  target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to spawn daemon: %w", err)
	}

	log.Info().
		Int("pid", pid).
		Str("entry", entry).
		Msg("Daemon spawned, waiting for liveness")

	result := &StartResult{PID: pid}
	signal, err := l.awaitLiveness(ctx, pid, target)
	if err != nil {
		return result, err
	}

	result.Alive = true
	result.Signal = signal
	log.Info().
		Int("pid", pid).
		Str("signal", signal).
		Msg("Daemon is alive")
	return result, nil
}

// awaitLiveness blocks until the heartbeat file appears, the process dies,
// or the startup wait elapses with the process still present.
func (l *Launcher) awaitLiveness(ctx context.Context, pid int, target string) (string, error) {
	deadline := time.NewTimer(l.opts.StartupWait)
	defer deadline.Stop()

	ticker := time.NewTicker(l.opts.PollInterval)
	defer ticker.Stop()

	var heartbeat string
	var watchEvents chan fsnotify.Event
	if l.opts.HeartbeatFile != "" {
		heartbeat = filepath.Join(target, l.opts.HeartbeatFile)
		if watcher, err := fsnotify.NewWatcher(); err == nil {
			if err := watcher.Add(filepath.Dir(heartbeat)); err == nil {
				defer watcher.Close()
				watchEvents = make(chan fsnotify.Event, 16)
				go forwardEvents(watcher, watchEvents)
			} else {
				watcher.Close()
				log.Debug().Err(err).Msg("Heartbeat watch unavailable, polling only")
			}
		}

		// The heartbeat may predate the watch if the daemon restarts fast.
		if heartbeatFresh(heartbeat, l.opts.StartupWait) {
			return "heartbeat", nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case ev := <-watchEvents:
			if ev.Name == heartbeat && (ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write)) {
				return "heartbeat", nil
			}

		case <-ticker.C:
			if heartbeat != "" {
				if heartbeatFresh(heartbeat, l.opts.StartupWait) {
					return "heartbeat", nil
				}
				// A daemon that double-forks leaves the spawned pid
				// dead; only the heartbeat can settle it either way.
				continue
			}
			if !l.spawner.Alive(pid) {
				return "", fmt.Errorf("daemon process %d exited during startup", pid)
			}

		case <-deadline.C:
			if l.spawner.Alive(pid) {
				return "process", nil
			}
			return "", fmt.Errorf("daemon process %d not alive after %s", pid, l.opts.StartupWait)
		}
	}
}

func (l *Launcher) findPython() (string, error) {
	for _, name := range l.opts.PythonCandidates {
		if path, err := l.runner.LookTool(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no Python interpreter found on PATH (tried %v)", l.opts.PythonCandidates)
}

func forwardEvents(watcher *fsnotify.Watcher, out chan<- fsnotify.Event) {
	for ev := range watcher.Events {
		select {
		case out <- ev:
		default:
		}
	}
}

// heartbeatFresh reports whether the heartbeat file exists and was touched
// within the given window.
func heartbeatFresh(path string, window time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) <= window
}
