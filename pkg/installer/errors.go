package installer

import (
	"errors"
	"fmt"
)

// Severity classifies a step failure for the orchestrator's abort policy.
type Severity string

const (
	// SeverityFatal aborts the run immediately. The target may hold
	// partial state; re-running the installer is the recovery path.
	SeverityFatal Severity = "fatal"

	// SeverityWarning is recorded on the outcome and the run continues.
	SeverityWarning Severity = "warning"
)

// Code identifies the failure condition for programmatic handling.
type Code string

const (
	// CodeResolveFailed indicates the install target could not be
	// resolved or is not writable.
	CodeResolveFailed Code = "resolve_failed"

	// CodeAcquisitionFailed indicates every acquisition strategy failed.
	CodeAcquisitionFailed Code = "acquisition_failed"

	// CodeScaffoldFailed indicates an unrecoverable filesystem error
	// while creating the required directory set.
	CodeScaffoldFailed Code = "scaffold_failed"

	// CodeConfigSeedFailed indicates the config template could not be
	// copied into place.
	CodeConfigSeedFailed Code = "config_seed_failed"

	// CodeDependencyInstallFailed indicates the package manager exited
	// non-zero or could not be invoked.
	CodeDependencyInstallFailed Code = "dependency_install_failed"

	// CodeVerifyFailed indicates the post-install smoke test failed.
	CodeVerifyFailed Code = "verify_failed"

	// CodeDaemonStartFailed indicates the daemon was not observably
	// alive within the startup wait.
	CodeDaemonStartFailed Code = "daemon_start_failed"
)

// StepError is a classified installer error carrying the step it occurred in
// and the underlying cause chain.
type StepError struct {
	// Step is the orchestrator step that failed.
	Step Step

	// Severity decides whether the run aborts or continues.
	Severity Severity

	// Code is the failure condition.
	Code Code

	// Message is the human-readable summary.
	Message string

	// Remedy describes how to recover manually, if there is a way.
	Remedy string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Severity, e.Step, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Step, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As traversal.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Is matches StepErrors by code, so callers can test conditions without
// holding the exact instance.
func (e *StepError) Is(target error) bool {
	t, ok := target.(*StepError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Fatal reports whether err carries a fatal StepError.
func Fatal(err error) bool {
	var se *StepError
	return errors.As(err, &se) && se.Severity == SeverityFatal
}

// NewFatalError creates a fatal StepError.
func NewFatalError(step Step, code Code, message string, err error) *StepError {
	return &StepError{
		Step:     step,
		Severity: SeverityFatal,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

// NewWarningError creates a warning-severity StepError.
func NewWarningError(step Step, code Code, message string, err error) *StepError {
	return &StepError{
		Step:     step,
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

// WithRemedy attaches a manual-recovery hint and returns the error.
func (e *StepError) WithRemedy(remedy string) *StepError {
	e.Remedy = remedy
	return e
}
