package installer

import (
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/acquire"
)

// Step identifies a unit of installer work.
type Step string

const (
	// StepResolve resolves and classifies the install target.
	StepResolve Step = "resolve"

	// StepAcquire populates the target with the framework source.
	StepAcquire Step = "acquire"

	// StepScaffold creates the required directory set.
	StepScaffold Step = "scaffold"

	// StepSeedConfig copies the config template into place.
	StepSeedConfig Step = "seed_config"

	// StepDeps installs the framework's Python dependencies.
	StepDeps Step = "deps"

	// StepVerify runs the framework's self test.
	StepVerify Step = "verify"

	// StepStart launches the framework daemon.
	StepStart Step = "start"
)

// State is the orchestrator's position in the install sequence.
type State string

const (
	StateResolving      State = "resolving"
	StateAcquiring      State = "acquiring"
	StateScaffolding    State = "scaffolding"
	StateSeedingConfig  State = "seeding_config"
	StateInstallingDeps State = "installing_deps"
	StateVerifying      State = "verifying"
	StateStarting       State = "starting"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// TargetState classifies what the resolver found at the install path.
type TargetState string

const (
	// TargetAbsent means the path does not exist yet.
	TargetAbsent TargetState = "absent"

	// TargetEmpty means the path is an existing empty directory.
	TargetEmpty TargetState = "empty"

	// TargetPopulated means the path holds a prior framework install
	// (the sentinel file is present) and will be updated in place.
	TargetPopulated TargetState = "populated"

	// TargetForeign means the path holds unrelated content. The
	// orchestrator proceeds but records the state for the report.
	TargetForeign TargetState = "foreign"
)

// Target is the resolved install destination. It is immutable once the
// resolver returns it; the orchestrator owns it for the run's duration.
type Target struct {
	// Path is the absolute install directory.
	Path string

	// State is what the resolver found there.
	State TargetState
}

// Populated reports whether the target already holds a framework install.
func (t Target) Populated() bool {
	return t.State == TargetPopulated
}

// Warning is a non-fatal step failure recorded on the outcome.
type Warning struct {
	// Step is where the failure occurred.
	Step Step `json:"step"`

	// Code is the failure condition.
	Code Code `json:"code"`

	// Message is the human-readable summary.
	Message string `json:"message"`

	// Remedy describes manual recovery, if any.
	Remedy string `json:"remedy,omitempty"`
}

// Outcome summarizes one installer run. It is constructed by the
// orchestrator and immutable once the run returns.
type Outcome struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// Path is the resolved install target.
	Path string `json:"path"`

	// TargetState is what the resolver found at Path before the run.
	TargetState TargetState `json:"target_state"`

	// Method is the acquisition method that populated the target.
	Method acquire.Method `json:"method"`

	// DirsCreated lists the required directories created this run.
	// Pre-existing directories are not listed.
	DirsCreated []string `json:"dirs_created"`

	// ConfigSeeded reports whether config.py was created from the
	// template this run.
	ConfigSeeded bool `json:"config_seeded"`

	// DepsInstalled reports whether dependency installation ran and
	// succeeded. False when it was skipped or failed; DepsSkipped and
	// Warnings disambiguate.
	DepsInstalled bool `json:"deps_installed"`

	// DepsSkipped reports whether dependency installation was bypassed
	// by flag.
	DepsSkipped bool `json:"deps_skipped"`

	// DaemonStarted reports whether the daemon passed its liveness
	// check. Always false when --start is not given.
	DaemonStarted bool `json:"daemon_started"`

	// DaemonPID is the daemon process ID when DaemonStarted is true.
	DaemonPID int `json:"daemon_pid,omitempty"`

	// ModelServerUp reports the informational Ollama probe result.
	ModelServerUp bool `json:"model_server_up"`

	// Warnings are the non-fatal failures accumulated during the run.
	Warnings []Warning `json:"warnings,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the run reached a terminal state.
	CompletedAt time.Time `json:"completed_at"`

	// FinalState is StateDone or StateFailed.
	FinalState State `json:"final_state"`
}

// Succeeded reports whether the run reached Done, warnings included.
func (o *Outcome) Succeeded() bool {
	return o.FinalState == StateDone
}

// HasWarnings reports whether any non-fatal failures were recorded.
func (o *Outcome) HasWarnings() bool {
	return len(o.Warnings) > 0
}
