package installer

import (
	"context"

	"github.com/Tolerable/claude-bootstrap/pkg/acquire"
	"github.com/Tolerable/claude-bootstrap/pkg/daemon"
	"github.com/Tolerable/claude-bootstrap/pkg/deps"
)

// SourceAcquirer populates an install target with the framework source.
type SourceAcquirer interface {
	// Acquire fetches or refreshes the source tree and reports which
	// method did it.
	Acquire(ctx context.Context, target string, populated bool) (acquire.Method, error)
}

// DependencyInstaller installs the framework's declared dependencies.
type DependencyInstaller interface {
	// Install runs the package manager against the manifest in target.
	Install(ctx context.Context, target string) (*deps.Report, error)
}

// DaemonLauncher starts the framework daemon and checks its liveness.
type DaemonLauncher interface {
	// Start spawns the daemon detached and waits for a liveness signal.
	Start(ctx context.Context, target string) (*daemon.StartResult, error)
}

// Verifier runs the framework's post-install self test.
type Verifier interface {
	// Verify runs the self test inside target.
	Verify(ctx context.Context, target string) error
}
