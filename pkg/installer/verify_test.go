package installer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/hostexec"
)

type scriptedRunner struct {
	tools  map[string]string
	result *hostexec.Result
	runErr error
	ran    []hostexec.Command
}

func (s *scriptedRunner) LookTool(name string) (string, error) {
	if path, ok := s.tools[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("tool %s not found", name)
}

func (s *scriptedRunner) Run(ctx context.Context, cmd hostexec.Command) (*hostexec.Result, error) {
	s.ran = append(s.ran, cmd)
	return s.result, s.runErr
}

func TestVerifyPassesOnCleanExit(t *testing.T) {
	runner := &scriptedRunner{
		tools:  map[string]string{"python3": "/usr/bin/python3"},
		result: &hostexec.Result{Stdout: "capabilities ok"},
	}
	v := NewSmokeTester(runner, []string{"python3", "python"}, 10*time.Second)

	if err := v.Verify(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(runner.ran) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(runner.ran))
	}
}

func TestVerifyPassesOnBannerDespiteExitError(t *testing.T) {
	runner := &scriptedRunner{
		tools:  map[string]string{"python3": "/usr/bin/python3"},
		result: &hostexec.Result{ExitCode: 1, Stdout: "=== SYSTEM TEST ===\ncamera: missing"},
		runErr: errors.New("python3 exited with code 1"),
	}
	v := NewSmokeTester(runner, []string{"python3"}, 10*time.Second)

	if err := v.Verify(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("self-test banner should count as a pass: %v", err)
	}
}

func TestVerifyFailsWithoutInterpreter(t *testing.T) {
	v := NewSmokeTester(&scriptedRunner{}, []string{"python3", "python"}, time.Second)
	if err := v.Verify(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected failure when no interpreter is on PATH")
	}
}

func TestVerifyFailsOnErrorWithoutBanner(t *testing.T) {
	runner := &scriptedRunner{
		tools:  map[string]string{"python3": "/usr/bin/python3"},
		result: &hostexec.Result{ExitCode: 2, Stderr: "traceback"},
		runErr: errors.New("python3 exited with code 2"),
	}
	v := NewSmokeTester(runner, []string{"python3"}, time.Second)

	if err := v.Verify(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected the self test failure to surface")
	}
}
