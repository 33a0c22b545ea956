package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/hostexec"
)

// fakeRunner scripts tool lookup and command execution.
type fakeRunner struct {
	tools    map[string]string
	runErr   error
	result   *hostexec.Result
	commands []hostexec.Command
}

func (f *fakeRunner) LookTool(name string) (string, error) {
	if path, ok := f.tools[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("tool %s not found", name)
}

func (f *fakeRunner) Run(ctx context.Context, cmd hostexec.Command) (*hostexec.Result, error) {
	f.commands = append(f.commands, cmd)
	result := f.result
	if result == nil {
		result = &hostexec.Result{}
	}
	return result, f.runErr
}

func TestGitAvailability(t *testing.T) {
	withGit := NewGitStrategy(&fakeRunner{tools: map[string]string{"git": "/usr/bin/git"}},
		"https://example.com/repo", time.Minute)
	if !withGit.Available(context.Background()) {
		t.Error("expected git to be reported available")
	}

	withoutGit := NewGitStrategy(&fakeRunner{}, "https://example.com/repo", time.Minute)
	if withoutGit.Available(context.Background()) {
		t.Error("expected git to be reported unavailable")
	}
}

func TestGitFetchRunsClone(t *testing.T) {
	runner := &fakeRunner{tools: map[string]string{"git": "/usr/bin/git"}}
	s := NewGitStrategy(runner, "https://example.com/repo", time.Minute)

	target := filepath.Join(t.TempDir(), "claude-agent")
	if err := s.Fetch(context.Background(), target); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(runner.commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(runner.commands))
	}
	cmd := runner.commands[0]
	if cmd.Path != "git" {
		t.Errorf("expected git invocation, got %s", cmd.Path)
	}
	want := []string{"clone", "https://example.com/repo", target}
	if strings.Join(cmd.Args, " ") != strings.Join(want, " ") {
		t.Errorf("expected args %v, got %v", want, cmd.Args)
	}
}

func TestGitFetchSurfacesStderr(t *testing.T) {
	runner := &fakeRunner{
		runErr: errors.New("git exited with code 128"),
		result: &hostexec.Result{ExitCode: 128, Stderr: "fatal: could not resolve host\n"},
	}
	s := NewGitStrategy(runner, "https://example.com/repo", time.Minute)

	err := s.Fetch(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected clone failure")
	}
	if !strings.Contains(err.Error(), "could not resolve host") {
		t.Errorf("error %q should carry the git stderr tail", err.Error())
	}
}

func TestGitRefreshRequiresGitMetadata(t *testing.T) {
	runner := &fakeRunner{tools: map[string]string{"git": "/usr/bin/git"}}
	s := NewGitStrategy(runner, "https://example.com/repo", time.Minute)

	// An archive-based install has no .git directory.
	target := t.TempDir()
	if err := s.Refresh(context.Background(), target); !errors.Is(err, ErrRefreshUnsupported) {
		t.Fatalf("expected ErrRefreshUnsupported, got %v", err)
	}

	if err := os.Mkdir(filepath.Join(target, ".git"), 0o755); err != nil {
		t.Fatalf("failed to fake git metadata: %v", err)
	}
	if err := s.Refresh(context.Background(), target); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	last := runner.commands[len(runner.commands)-1]
	if last.Dir != target {
		t.Errorf("pull must run inside the target, got dir %q", last.Dir)
	}
	if len(last.Args) == 0 || last.Args[0] != "pull" {
		t.Errorf("expected a git pull, got args %v", last.Args)
	}
}
