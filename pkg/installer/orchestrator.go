package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/acquire"
	"github.com/Tolerable/claude-bootstrap/pkg/daemon"
	"github.com/Tolerable/claude-bootstrap/pkg/deps"
	"github.com/Tolerable/claude-bootstrap/pkg/layout"
	"github.com/Tolerable/claude-bootstrap/pkg/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options selects the optional orchestrator behaviors for one run.
type Options struct {
	// Dir overrides the default install directory when non-empty.
	Dir string

	// SkipDeps bypasses dependency installation entirely. The bypass is
	// a silent no-op success, distinguishable from a real install only
	// through the outcome record.
	SkipDeps bool

	// SkipVerify bypasses the post-install smoke test.
	SkipVerify bool

	// StartDaemon launches the framework daemon after install.
	StartDaemon bool
}

// Orchestrator sequences the install steps and enforces the fatal/non-fatal
// policy: resolving, acquiring, and scaffolding failures abort the run;
// everything after the source tree is in place degrades to a warning.
type Orchestrator struct {
	resolver   *PathResolver
	acquirer   SourceAcquirer
	scaffolder *Scaffolder
	deps       DependencyInstaller
	verifier   Verifier
	launcher   DaemonLauncher

	events  *telemetry.Publisher
	metrics *telemetry.Metrics

	// ollamaURL and ollamaTimeout configure the informational model
	// server probe. An empty URL disables it.
	ollamaURL     string
	ollamaTimeout time.Duration

	state State
}

// NewOrchestrator wires an orchestrator from its step implementations.
func NewOrchestrator(
	resolver *PathResolver,
	acquirer SourceAcquirer,
	scaffolder *Scaffolder,
	depInstaller DependencyInstaller,
	verifier Verifier,
	launcher DaemonLauncher,
	events *telemetry.Publisher,
	metrics *telemetry.Metrics,
) *Orchestrator {
	return &Orchestrator{
		resolver:   resolver,
		acquirer:   acquirer,
		scaffolder: scaffolder,
		deps:       depInstaller,
		verifier:   verifier,
		launcher:   launcher,
		events:     events,
		metrics:    metrics,
		state:      StateResolving,
	}
}

// WithOllamaProbe enables the informational model-server probe.
func (o *Orchestrator) WithOllamaProbe(url string, timeout time.Duration) *Orchestrator {
	o.ollamaURL = url
	o.ollamaTimeout = timeout
	return o
}

// State returns the orchestrator's current position in the sequence.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the install sequence. The returned outcome is always
// populated; the error is non-nil only when the run reached Failed. Steps
// run strictly in order because each assumes the filesystem state the
// previous one produced.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Outcome, error) {
	outcome := &Outcome{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	log.Info().Str("run_id", outcome.RunID).Msg("Starting install")
	o.publish(telemetry.EventTypeRunStarted, outcome.RunID, "", "Install started", telemetry.LevelInfo)

	err := o.run(ctx, opts, outcome)
	outcome.CompletedAt = time.Now()

	if err != nil {
		outcome.FinalState = StateFailed
		o.state = StateFailed
		o.finish(outcome, err)
		return outcome, err
	}

	outcome.FinalState = StateDone
	o.state = StateDone
	o.finish(outcome, nil)
	return outcome, nil
}

func (o *Orchestrator) run(ctx context.Context, opts Options, outcome *Outcome) error {
	// Resolving: fatal on failure. Nothing has been written yet.
	target, err := step(o, StepResolve, outcome, func() (Target, error) {
		o.state = StateResolving
		return o.resolver.Resolve(opts.Dir)
	})
	if err != nil {
		return NewFatalError(StepResolve, CodeResolveFailed,
			"could not resolve the install target", err)
	}
	outcome.Path = target.Path
	outcome.TargetState = target.State

	if target.State == TargetForeign {
		log.Warn().
			Str("path", target.Path).
			Msg("Install target holds unrelated content, installing over it")
	}

	// Acquiring: fatal on failure. Everything after this step assumes
	// the source tree is in place.
	method, err := step(o, StepAcquire, outcome, func() (acquire.Method, error) {
		o.state = StateAcquiring
		return o.acquirer.Acquire(ctx, target.Path, target.Populated())
	})
	if err != nil {
		return NewFatalError(StepAcquire, CodeAcquisitionFailed,
			"could not obtain the framework source", err)
	}
	outcome.Method = method

	// Scaffolding: fatal on failure, idempotent on success.
	created, err := step(o, StepScaffold, outcome, func() ([]string, error) {
		o.state = StateScaffolding
		return o.scaffolder.Scaffold(target.Path)
	})
	if err != nil {
		return NewFatalError(StepScaffold, CodeScaffoldFailed,
			"could not create the required directories", err)
	}
	outcome.DirsCreated = created

	// Config seeding: non-fatal. The framework runs unconfigured.
	seeded, err := step(o, StepSeedConfig, outcome, func() (bool, error) {
		o.state = StateSeedingConfig
		return seedConfig(target.Path)
	})
	if err != nil {
		o.warn(outcome, NewWarningError(StepSeedConfig, CodeConfigSeedFailed,
			"could not seed config.py from the template", err).
			WithRemedy(fmt.Sprintf("copy %s to %s by hand", layout.ConfigExample, layout.ConfigFile)))
	}
	outcome.ConfigSeeded = seeded

	// Dependencies: skippable by flag, non-fatal on failure. The source
	// tree is usable and the user can resolve dependencies manually.
	if opts.SkipDeps {
		outcome.DepsSkipped = true
		o.publish(telemetry.EventTypeStepSkipped, outcome.RunID, string(StepDeps),
			"Dependency installation skipped by flag", telemetry.LevelInfo)
	} else {
		report, err := step(o, StepDeps, outcome, func() (*deps.Report, error) {
			o.state = StateInstallingDeps
			return o.deps.Install(ctx, target.Path)
		})
		switch {
		case err == nil:
			outcome.DepsInstalled = true
		case errors.Is(err, deps.ErrNoManifest):
			o.warn(outcome, NewWarningError(StepDeps, CodeDependencyInstallFailed,
				"framework ships no dependency manifest", err))
		default:
			msg := "dependency installation failed"
			if report != nil && report.ErrorOutput != "" {
				msg = fmt.Sprintf("%s: %s", msg, report.ErrorOutput)
			}
			o.warn(outcome, NewWarningError(StepDeps, CodeDependencyInstallFailed, msg, err).
				WithRemedy(fmt.Sprintf("re-run by hand: python -m pip install -r %s",
					layout.ManifestPath(target.Path))))
		}
	}

	// Verification: non-fatal smoke test of the installed framework.
	if !opts.SkipVerify && o.verifier != nil {
		_, err := step(o, StepVerify, outcome, func() (struct{}, error) {
			o.state = StateVerifying
			return struct{}{}, o.verifier.Verify(ctx, target.Path)
		})
		if err != nil {
			o.warn(outcome, NewWarningError(StepVerify, CodeVerifyFailed,
				"framework self test did not pass", err))
		}
	}

	// Informational model-server probe; never affects the outcome status.
	if o.ollamaURL != "" {
		outcome.ModelServerUp = daemon.ProbeOllama(ctx, o.ollamaURL, o.ollamaTimeout)
	}

	// Daemon launch: gated by flag, non-fatal on failure. The daemon is
	// not supervised and never rolled back.
	if opts.StartDaemon {
		result, err := step(o, StepStart, outcome, func() (*daemon.StartResult, error) {
			o.state = StateStarting
			return o.launcher.Start(ctx, target.Path)
		})
		if err != nil {
			o.warn(outcome, NewWarningError(StepStart, CodeDaemonStartFailed,
				"daemon did not come up within the startup wait", err).
				WithRemedy(fmt.Sprintf("start it by hand: python %s", layout.DaemonEntry)))
		} else {
			outcome.DaemonStarted = result.Alive
			outcome.DaemonPID = result.PID
		}
	}

	return nil
}

// step runs fn with event publication and metric observation around it.
func step[T any](o *Orchestrator, name Step, outcome *Outcome, fn func() (T, error)) (T, error) {
	o.publish(telemetry.EventTypeStepStarted, outcome.RunID, string(name), "", telemetry.LevelInfo)
	start := time.Now()

	result, err := fn()
	duration := time.Since(start)

	if err != nil {
		o.metrics.ObserveStep(string(name), "failed", duration)
		o.publish(telemetry.EventTypeStepFailed, outcome.RunID, string(name),
			err.Error(), telemetry.LevelError)
		return result, err
	}

	o.metrics.ObserveStep(string(name), "succeeded", duration)
	o.publish(telemetry.EventTypeStepCompleted, outcome.RunID, string(name), "", telemetry.LevelInfo)
	return result, nil
}

func (o *Orchestrator) warn(outcome *Outcome, err *StepError) {
	log.Warn().Err(err.Err).Str("step", string(err.Step)).Msg(err.Message)
	o.metrics.ObserveWarning()
	outcome.Warnings = append(outcome.Warnings, Warning{
		Step:    err.Step,
		Code:    err.Code,
		Message: err.Message,
		Remedy:  err.Remedy,
	})
}

func (o *Orchestrator) finish(outcome *Outcome, err error) {
	if err != nil {
		o.metrics.ObserveRun("failed")
		o.publish(telemetry.EventTypeRunFailed, outcome.RunID, "", err.Error(), telemetry.LevelError)
		log.Error().Err(err).Str("run_id", outcome.RunID).Msg("Install failed")
		return
	}

	o.metrics.ObserveRun("succeeded")
	o.publish(telemetry.EventTypeRunCompleted, outcome.RunID, "", "Install completed", telemetry.LevelInfo)
	if outcome.HasWarnings() {
		log.Warn().
			Int("warnings", len(outcome.Warnings)).
			Str("run_id", outcome.RunID).
			Msg("Install completed with warnings")
	} else {
		log.Info().Str("run_id", outcome.RunID).Msg("Install completed")
	}
}

func (o *Orchestrator) publish(eventType, runID, step, message, level string) {
	if o.events == nil {
		return
	}
	o.events.Publish(eventType, runID, step, message, level)
}

// seedConfig copies the framework's config template into place when no
// active config exists yet. Both absences are fine: an existing config is
// kept, a missing template means the framework ships without one.
func seedConfig(target string) (bool, error) {
	configPath := layout.ConfigPath(target)
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}

	examplePath := layout.ConfigExamplePath(target)
	src, err := os.Open(examplePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open config template: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(configPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", layout.ConfigFile, err)
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, fmt.Errorf("failed to copy config template: %w", err)
	}

	log.Info().Str("config", configPath).Msg("Seeded config from template")
	return true, nil
}
