// Package hostexec wraps the ambient host tools (git, pip, the Python
// interpreter) behind small capability interfaces so the installer's decision
// logic can be tested against fakes.
package hostexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command describes a subprocess invocation.
type Command struct {
	// Path is the executable name or path.
	Path string

	// Args are the arguments, not including the executable itself.
	Args []string

	// Dir is the working directory. Empty means the caller's.
	Dir string

	// Timeout bounds the invocation. Zero means no extra deadline beyond
	// the supplied context.
	Timeout time.Duration
}

// Result captures a completed subprocess invocation.
type Result struct {
	// ExitCode is the process exit status. Zero on success.
	ExitCode int

	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string
}

// Runner executes host commands and resolves tools on PATH.
type Runner interface {
	// LookTool resolves a tool name to an executable path. A non-nil
	// error means the tool is not installed, which callers treat as a
	// missing capability rather than a failure.
	LookTool(name string) (string, error)

	// Run executes the command to completion and captures its output.
	// A non-zero exit is returned as an error alongside the Result.
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// NewRunner returns a Runner backed by the real host.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// LookTool resolves a tool on PATH.
func (r *ExecRunner) LookTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("tool %s not found on PATH: %w", name, err)
	}
	return path, nil
}

// Run executes the command, honoring the command timeout if set.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("%s exited with code %d: %w",
			cmd.Path, result.ExitCode, err)
	case ctx.Err() != nil:
		result.ExitCode = -1
		return result, fmt.Errorf("%s timed out: %w", cmd.Path, ctx.Err())
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("failed to run %s: %w", cmd.Path, err)
	}
}

// TailLines returns the last n non-empty lines of s, for surfacing the
// interesting end of a captured subprocess transcript.
func TailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := make([]string, 0, n)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}
