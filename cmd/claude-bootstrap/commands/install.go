package commands

import (
	"context"
	"fmt"

	"github.com/Tolerable/claude-bootstrap/pkg/acquire"
	"github.com/Tolerable/claude-bootstrap/pkg/config"
	"github.com/Tolerable/claude-bootstrap/pkg/daemon"
	"github.com/Tolerable/claude-bootstrap/pkg/deps"
	"github.com/Tolerable/claude-bootstrap/pkg/hostexec"
	"github.com/Tolerable/claude-bootstrap/pkg/installer"
	"github.com/Tolerable/claude-bootstrap/pkg/telemetry"
	"github.com/rs/zerolog/log"
)

type installFlags struct {
	dir      string
	start    bool
	noDeps   bool
	noVerify bool
}

func runInstall(ctx context.Context, flags installFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.Info().
		Str("dir", flags.dir).
		Bool("start", flags.start).
		Bool("no_deps", flags.noDeps).
		Msg("Bootstrapping claude-agent")

	events := telemetry.NewPublisher(64)
	defer events.Close()
	events.Subscribe(logEvents)

	metrics := telemetry.NewMetrics()
	runner := hostexec.NewRunner()

	acquirer := acquire.NewAcquirer(
		acquire.NewGitStrategy(runner, cfg.RepoURL, cfg.Timeouts.Acquire),
		acquire.NewArchiveStrategy(cfg.ArchiveURL, cfg.Timeouts.Acquire, ""),
	)

	launcher := daemon.NewLauncher(hostexec.NewSpawner(), runner, daemon.Options{
		PythonCandidates: cfg.PythonCandidates,
		StartupWait:      cfg.Daemon.StartupWait,
		PollInterval:     cfg.Daemon.PollInterval,
		HeartbeatFile:    cfg.Daemon.HeartbeatFile,
	})

	var verifier installer.Verifier
	if cfg.Verify {
		verifier = installer.NewSmokeTester(runner, cfg.PythonCandidates, cfg.Timeouts.Verify)
	}

	orch := installer.NewOrchestrator(
		installer.NewPathResolver(cfg.DefaultDir),
		acquirer,
		installer.NewScaffolder(cfg.RequiredDirs),
		deps.NewPipInstaller(runner, cfg.PythonCandidates, cfg.Timeouts.Deps),
		verifier,
		launcher,
		events,
		metrics,
	).WithOllamaProbe(cfg.Ollama.TagsURL, cfg.Ollama.Timeout)

	outcome, err := orch.Run(ctx, installer.Options{
		Dir:         flags.dir,
		SkipDeps:    flags.noDeps,
		SkipVerify:  flags.noVerify || !cfg.Verify,
		StartDaemon: flags.start,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		rendered, err := installer.RenderJSON(outcome)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	}

	fmt.Print(installer.RenderReport(outcome))
	if verbose {
		fmt.Printf("\nStep timings:\n%s", metrics.Summary())
	}
	return nil
}

// logEvents is the default telemetry subscriber, mirroring step events onto
// the structured log.
func logEvents(event telemetry.Event) {
	entry := log.Debug()
	switch event.Level {
	case telemetry.LevelWarning:
		entry = log.Warn()
	case telemetry.LevelError:
		entry = log.Error()
	}
	entry.
		Str("type", event.Type).
		Str("run_id", event.RunID).
		Str("step", event.Step).
		Msg(event.Message)
}
