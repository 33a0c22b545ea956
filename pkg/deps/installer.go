// Package deps installs the agent framework's Python dependencies by
// invoking pip against the manifest inside the install target.
package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/hostexec"
	"github.com/Tolerable/claude-bootstrap/pkg/layout"
	"github.com/rs/zerolog/log"
)

// ErrNoManifest is returned when the framework ships without a dependency
// manifest. Callers treat it as a note, not a failure.
var ErrNoManifest = errors.New("no dependency manifest found")

// Report describes one dependency installation attempt.
type Report struct {
	// Python is the interpreter path that ran pip.
	Python string

	// ErrorOutput is the tail of pip's stderr when the install failed.
	ErrorOutput string
}

// PipInstaller runs pip via the host's Python interpreter.
type PipInstaller struct {
	runner     hostexec.Runner
	candidates []string
	timeout    time.Duration
}

// NewPipInstaller creates an installer trying the given interpreter names in
// order on PATH.
func NewPipInstaller(runner hostexec.Runner, candidates []string, timeout time.Duration) *PipInstaller {
	return &PipInstaller{
		runner:     runner,
		candidates: candidates,
		timeout:    timeout,
	}
}

// Install runs `<python> -m pip install -r requirements.txt` inside target.
// A missing manifest returns ErrNoManifest; a failed pip run returns an
// error with the captured stderr tail in the report.
func (p *PipInstaller) Install(ctx context.Context, target string) (*Report, error) {
	manifest := layout.ManifestPath(target)
	if _, err := os.Stat(manifest); err != nil {
		return &Report{}, ErrNoManifest
	}

	python, err := p.findPython()
	if err != nil {
		return &Report{}, err
	}
	report := &Report{Python: python}

	log.Info().
		Str("python", python).
		Str("manifest", manifest).
		Msg("Installing dependencies")

	result, err := p.runner.Run(ctx, hostexec.Command{
		Path:    python,
		Args:    []string{"-m", "pip", "install", "-r", manifest},
		Dir:     target,
		Timeout: p.timeout,
	})
	if err != nil {
		if result != nil {
			report.ErrorOutput = hostexec.TailLines(result.Stderr, 10)
		}
		return report, fmt.Errorf("dependency installation failed: %w", err)
	}

	log.Info().Msg("Dependencies installed")
	return report, nil
}

func (p *PipInstaller) findPython() (string, error) {
	for _, name := range p.candidates {
		if path, err := p.runner.LookTool(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no Python interpreter found on PATH (tried %v)", p.candidates)
}
