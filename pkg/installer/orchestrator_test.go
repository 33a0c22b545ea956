package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tolerable/claude-bootstrap/pkg/acquire"
	"github.com/Tolerable/claude-bootstrap/pkg/daemon"
	"github.com/Tolerable/claude-bootstrap/pkg/deps"
	"github.com/Tolerable/claude-bootstrap/pkg/layout"
	"github.com/Tolerable/claude-bootstrap/pkg/telemetry"
)

// fakeAcquirer reports a fixed method and optionally writes a minimal
// framework tree into the target, the way a real acquisition would.
type fakeAcquirer struct {
	method   acquire.Method
	err      error
	populate bool
	calls    int
}

func (f *fakeAcquirer) Acquire(ctx context.Context, target string, populated bool) (acquire.Method, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.populate {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(layout.SentinelPath(target), []byte("# me"), 0o644); err != nil {
			return "", err
		}
	}
	return f.method, nil
}

type fakeDeps struct {
	err   error
	calls int
}

func (f *fakeDeps) Install(ctx context.Context, target string) (*deps.Report, error) {
	f.calls++
	return &deps.Report{}, f.err
}

type fakeLauncher struct {
	result *daemon.StartResult
	err    error
	calls  int
}

func (f *fakeLauncher) Start(ctx context.Context, target string) (*daemon.StartResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(ctx context.Context, target string) error {
	return f.err
}

type orchFixture struct {
	acquirer *fakeAcquirer
	deps     *fakeDeps
	launcher *fakeLauncher
	orch     *Orchestrator
	events   *telemetry.Publisher
}

func newFixture(t *testing.T, defaultDir string) *orchFixture {
	t.Helper()
	f := &orchFixture{
		acquirer: &fakeAcquirer{method: acquire.MethodClone, populate: true},
		deps:     &fakeDeps{},
		launcher: &fakeLauncher{result: &daemon.StartResult{PID: 4242, Alive: true, Signal: "process"}},
		events:   telemetry.NewPublisher(16),
	}
	t.Cleanup(f.events.Close)

	f.orch = NewOrchestrator(
		NewPathResolver(defaultDir),
		f.acquirer,
		NewScaffolder(layout.RequiredDirs()),
		f.deps,
		&fakeVerifier{},
		f.launcher,
		f.events,
		telemetry.NewMetrics(),
	)
	return f
}

// Scenario: fresh empty target, git present. The full layout comes up and
// the daemon stays down without --start.
func TestRunFreshInstallWithClone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, dir)

	outcome, err := f.orch.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !outcome.Succeeded() {
		t.Errorf("expected Done, got %s", outcome.FinalState)
	}
	if outcome.Method != acquire.MethodClone {
		t.Errorf("expected %s, got %s", acquire.MethodClone, outcome.Method)
	}
	if len(outcome.DirsCreated) != len(layout.RequiredDirs()) {
		t.Errorf("expected full directory set created, got %v", outcome.DirsCreated)
	}
	if outcome.DaemonStarted {
		t.Error("daemon must stay down without the start option")
	}
	if f.launcher.calls != 0 {
		t.Errorf("launcher must not be invoked, got %d calls", f.launcher.calls)
	}
	if outcome.HasWarnings() {
		t.Errorf("unexpected warnings: %v", outcome.Warnings)
	}
}

// Scenario: git absent, archive fallback in use. Same final directory state.
func TestRunFreshInstallWithArchiveFallback(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, dir)
	f.acquirer.method = acquire.MethodArchive

	outcome, err := f.orch.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Method != acquire.MethodArchive {
		t.Errorf("expected %s, got %s", acquire.MethodArchive, outcome.Method)
	}
	if len(outcome.DirsCreated) != len(layout.RequiredDirs()) {
		t.Errorf("expected the same final directory state as a clone install, got %v",
			outcome.DirsCreated)
	}
}

// Scenario: unusable --dir. The run fails before any directory is created
// under the unrelated default path.
func TestRunFatalOnUnresolvableTarget(t *testing.T) {
	defaultDir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, defaultDir)

	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome, err := f.orch.Run(context.Background(), Options{
		Dir: filepath.Join(blocker, "nested"),
	})
	if err == nil {
		t.Fatal("expected a fatal resolve failure")
	}
	if !Fatal(err) {
		t.Errorf("resolve failure must be fatal, got %v", err)
	}
	if outcome.FinalState != StateFailed {
		t.Errorf("expected Failed, got %s", outcome.FinalState)
	}
	if f.acquirer.calls != 0 {
		t.Error("acquisition must not run after a fatal resolve failure")
	}
	if _, statErr := os.Stat(defaultDir); !os.IsNotExist(statErr) {
		t.Error("no partial directories may appear under the unrelated default path")
	}
}

// Scenario: --no-deps --start on a populated target. Deps skipped without a
// warning, daemon attempted, outcome reflects the liveness check.
func TestRunSkipDepsWithStart(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(layout.SentinelPath(dir), []byte("# me"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, dir)
	f.acquirer.method = acquire.MethodExisting

	outcome, err := f.orch.Run(context.Background(), Options{SkipDeps: true, StartDaemon: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if f.deps.calls != 0 {
		t.Errorf("dependency installer must not run under SkipDeps, got %d calls", f.deps.calls)
	}
	if !outcome.DepsSkipped {
		t.Error("outcome must record the skip")
	}
	if outcome.HasWarnings() {
		t.Errorf("a skip is not a warning, got %v", outcome.Warnings)
	}
	if f.launcher.calls != 1 {
		t.Errorf("expected 1 launch attempt, got %d", f.launcher.calls)
	}
	if !outcome.DaemonStarted || outcome.DaemonPID != 4242 {
		t.Errorf("outcome must reflect the liveness result, got started=%v pid=%d",
			outcome.DaemonStarted, outcome.DaemonPID)
	}
	if outcome.TargetState != TargetPopulated {
		t.Errorf("expected populated target state, got %s", outcome.TargetState)
	}
}

func TestRunAcquisitionFailureIsFatal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, dir)
	f.acquirer.err = errors.New("every strategy failed")

	outcome, err := f.orch.Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected a fatal acquisition failure")
	}

	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StepError, got %T", err)
	}
	if se.Code != CodeAcquisitionFailed || se.Severity != SeverityFatal {
		t.Errorf("expected fatal %s, got %s/%s", CodeAcquisitionFailed, se.Severity, se.Code)
	}
	if outcome.FinalState != StateFailed {
		t.Errorf("expected Failed, got %s", outcome.FinalState)
	}
	if f.deps.calls != 0 || f.launcher.calls != 0 {
		t.Error("later steps must not run after a fatal failure")
	}
}

// A dependency failure degrades to a warning and must not disturb the
// daemon liveness computation.
func TestRunDepsFailureIsNonFatal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, dir)
	f.deps.err = errors.New("pip exited with code 1")

	outcome, err := f.orch.Run(context.Background(), Options{StartDaemon: true})
	if err != nil {
		t.Fatalf("a dependency failure must not abort the run: %v", err)
	}

	if !outcome.Succeeded() {
		t.Errorf("expected Done with warnings, got %s", outcome.FinalState)
	}
	if outcome.DepsInstalled {
		t.Error("outcome must not claim dependencies were installed")
	}
	found := false
	for _, w := range outcome.Warnings {
		if w.Code == CodeDependencyInstallFailed {
			found = true
			if w.Remedy == "" {
				t.Error("dependency warnings must carry a manual remedy")
			}
		}
	}
	if !found {
		t.Errorf("expected a %s warning, got %v", CodeDependencyInstallFailed, outcome.Warnings)
	}
	if !outcome.DaemonStarted {
		t.Error("daemon_started must be computed independently of the deps failure")
	}
}

func TestRunDaemonFailureIsNonFatal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, dir)
	f.launcher.err = errors.New("daemon exited during startup")
	f.launcher.result = nil

	outcome, err := f.orch.Run(context.Background(), Options{StartDaemon: true})
	if err != nil {
		t.Fatalf("a daemon failure must not abort the run: %v", err)
	}
	if !outcome.Succeeded() {
		t.Errorf("expected Done with warnings, got %s", outcome.FinalState)
	}
	if outcome.DaemonStarted {
		t.Error("daemon_started must be false after a failed liveness check")
	}
	found := false
	for _, w := range outcome.Warnings {
		if w.Code == CodeDaemonStartFailed {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s warning, got %v", CodeDaemonStartFailed, outcome.Warnings)
	}
}

func TestRunMissingManifestIsWarningNotFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, dir)
	f.deps.err = deps.ErrNoManifest

	outcome, err := f.orch.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Succeeded() {
		t.Errorf("expected Done, got %s", outcome.FinalState)
	}
	if !outcome.HasWarnings() {
		t.Error("a missing manifest should be noted as a warning")
	}
}

func TestRunSeedsConfigFromExample(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, dir)

	// Make the fake acquisition ship a config template.
	f.acquirer.populate = false
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(layout.ConfigExamplePath(dir), []byte("MODEL = 'x'\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome, err := f.orch.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.ConfigSeeded {
		t.Error("expected config to be seeded from the example")
	}
	data, err := os.ReadFile(layout.ConfigPath(dir))
	if err != nil {
		t.Fatalf("config.py missing: %v", err)
	}
	if string(data) != "MODEL = 'x'\n" {
		t.Errorf("unexpected seeded config: %q", data)
	}

	// Second run must keep the existing config untouched.
	if err := os.WriteFile(layout.ConfigPath(dir), []byte("MODEL = 'edited'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outcome, err = f.orch.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if outcome.ConfigSeeded {
		t.Error("an existing config must never be reseeded")
	}
	data, _ = os.ReadFile(layout.ConfigPath(dir))
	if string(data) != "MODEL = 'edited'\n" {
		t.Error("an existing config must never be overwritten")
	}
}

func TestRunRerunIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "claude-agent")
	f := newFixture(t, dir)

	if _, err := f.orch.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	outcome, err := f.orch.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("re-run must be safe: %v", err)
	}
	if len(outcome.DirsCreated) != 0 {
		t.Errorf("re-run must not re-create directories, got %v", outcome.DirsCreated)
	}
	if outcome.TargetState != TargetPopulated {
		t.Errorf("re-run should see a populated target, got %s", outcome.TargetState)
	}
}
