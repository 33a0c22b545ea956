package acquire

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/hostexec"
	"github.com/Tolerable/claude-bootstrap/pkg/layout"
)

// GitStrategy acquires the framework by cloning its repository. It is the
// preferred strategy and the only one that can refresh an existing install.
type GitStrategy struct {
	runner  hostexec.Runner
	repoURL string
	timeout time.Duration
}

// NewGitStrategy creates a git-backed strategy.
func NewGitStrategy(runner hostexec.Runner, repoURL string, timeout time.Duration) *GitStrategy {
	return &GitStrategy{
		runner:  runner,
		repoURL: repoURL,
		timeout: timeout,
	}
}

// Method identifies the strategy.
func (g *GitStrategy) Method() Method {
	return MethodClone
}

// Available reports whether a git client is on PATH.
func (g *GitStrategy) Available(ctx context.Context) bool {
	_, err := g.runner.LookTool("git")
	return err == nil
}

// Fetch clones the repository into target.
func (g *GitStrategy) Fetch(ctx context.Context, target string) error {
	result, err := g.runner.Run(ctx, hostexec.Command{
		Path:    "git",
		Args:    []string{"clone", g.repoURL, target},
		Timeout: g.timeout,
	})
	if err != nil {
		return fmt.Errorf("git clone of %s failed: %w%s",
			g.repoURL, err, stderrDetail(result))
	}
	return nil
}

// Refresh pulls the latest main branch into an existing clone. A populated
// target without git metadata (an archive install) cannot be refreshed.
func (g *GitStrategy) Refresh(ctx context.Context, target string) error {
	if _, err := os.Stat(layout.GitDirPath(target)); err != nil {
		return ErrRefreshUnsupported
	}

	result, err := g.runner.Run(ctx, hostexec.Command{
		Path:    "git",
		Args:    []string{"pull", "--ff-only"},
		Dir:     target,
		Timeout: g.timeout,
	})
	if err != nil {
		return fmt.Errorf("git pull failed: %w%s", err, stderrDetail(result))
	}
	return nil
}

func stderrDetail(result *hostexec.Result) string {
	if result == nil || result.Stderr == "" {
		return ""
	}
	return " (" + hostexec.TailLines(result.Stderr, 3) + ")"
}
