// Package installer provides the core bootstrap flow for provisioning a
// claude-agent working tree on the local host.
//
// # Overview
//
// An installation run moves through a fixed sequence of steps, each mapped to
// an orchestrator state:
//
//  1. Resolve - Resolve and classify the target directory (PathResolver)
//  2. Acquire - Populate the target from a source strategy (SourceAcquirer)
//  3. Scaffold - Create the required directory tree (Scaffolder)
//  4. SeedConfig - Copy the example config into place if absent
//  5. Deps - Install Python dependencies (DependencyInstaller)
//  6. Verify - Run the agent smoke test (Verifier)
//  7. Start - Launch the agent daemon (DaemonLauncher)
//
// Failures in the first three steps are fatal and abort the run. Failures in
// the later steps are downgraded to warnings: the run still completes, the
// warning is attached to the Outcome, and the process exits zero.
//
// # Core Types
//
//   - Orchestrator: drives the step sequence and owns state transitions
//   - Options: per-run knobs (target override, skip flags, daemon start)
//   - Outcome: the result record for a run, including warnings and timings
//   - Target: the resolved install directory and its classified state
//   - StepError: a classified step failure with severity, code, and remedy
//
// # Collaborator Interfaces
//
// The orchestrator depends only on small capability interfaces so each step
// can be exercised in isolation:
//
//	type SourceAcquirer interface {
//	    Acquire(ctx context.Context, target string, populated bool) (acquire.Method, error)
//	}
//
// DependencyInstaller, Verifier, and DaemonLauncher follow the same shape.
// Production implementations live in pkg/acquire, pkg/deps, and pkg/daemon.
//
// # Usage
//
//	orch := installer.NewOrchestrator(resolver, acquirer, scaffolder,
//	    depInstaller, verifier, launcher, events, metrics)
//	outcome := orch.Run(ctx, installer.Options{StartDaemon: true})
//	if !outcome.Succeeded() {
//	    // a fatal step failed; outcome.FinalState is StateFailed
//	}
package installer
