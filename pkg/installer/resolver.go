package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Tolerable/claude-bootstrap/pkg/layout"
)

// PathResolver turns the user-supplied or default directory into a
// classified absolute install target. It has no network or process side
// effects; its only write is a transient probe proving the target is
// creatable.
type PathResolver struct {
	defaultDir string
}

// NewPathResolver creates a resolver falling back to defaultDir.
func NewPathResolver(defaultDir string) *PathResolver {
	return &PathResolver{defaultDir: defaultDir}
}

// Resolve returns the absolute install target for the given override, or the
// default when override is empty. A pre-existing non-empty directory is not
// an error; its state is recorded for the orchestrator to act on.
func (r *PathResolver) Resolve(override string) (Target, error) {
	dir := override
	if dir == "" {
		dir = r.defaultDir
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Target{}, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	state, err := classifyTarget(abs)
	if err != nil {
		return Target{}, err
	}

	if state == TargetAbsent {
		if err := checkCreatable(abs); err != nil {
			return Target{}, err
		}
	} else if err := checkWritable(abs); err != nil {
		return Target{}, err
	}

	return Target{Path: abs, State: state}, nil
}

func classifyTarget(path string) (TargetState, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return TargetAbsent, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("install target %s exists and is not a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err == io.EOF {
		return TargetEmpty, nil
	} else if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", path, err)
	}

	if _, err := os.Stat(layout.SentinelPath(path)); err == nil {
		return TargetPopulated, nil
	}
	return TargetForeign, nil
}

// checkCreatable verifies an absent target can be created by probing the
// nearest existing ancestor for write access. The probe file is removed
// before returning.
func checkCreatable(path string) error {
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	return checkWritable(ancestor)
}

func checkWritable(dir string) error {
	probe, err := os.CreateTemp(dir, ".claude-bootstrap-probe-*")
	if err != nil {
		return fmt.Errorf("install target is not writable under %s: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to remove write probe %s: %w", name, err)
	}
	return nil
}
