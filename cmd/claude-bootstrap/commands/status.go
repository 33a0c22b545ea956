package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tolerable/claude-bootstrap/pkg/config"
	"github.com/Tolerable/claude-bootstrap/pkg/daemon"
	"github.com/Tolerable/claude-bootstrap/pkg/installer"
	"github.com/Tolerable/claude-bootstrap/pkg/layout"
	"github.com/spf13/cobra"
)

// statusReport is the machine-readable shape of the status command output.
type statusReport struct {
	Path           string   `json:"path"`
	Installed      bool     `json:"installed"`
	MissingDirs    []string `json:"missing_dirs,omitempty"`
	HasManifest    bool     `json:"has_manifest"`
	HasConfig      bool     `json:"has_config"`
	HasDaemonEntry bool     `json:"has_daemon_entry"`
	ModelServerUp  bool     `json:"model_server_up"`
}

func newStatusCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Inspect an existing install",
		Long: `Inspect an install target without changing anything: whether the framework
is present, whether its directory layout is complete, and whether the local
Ollama server answers.`,
		Example: `  # Inspect the default install directory
  claude-bootstrap status

  # Inspect a custom directory
  claude-bootstrap status --dir /opt/claude-agent`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			target := dir
			if target == "" {
				target = cfg.DefaultDir
			}
			abs, err := filepath.Abs(target)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", target, err)
			}

			report := statusReport{
				Path:           abs,
				Installed:      exists(layout.SentinelPath(abs)),
				MissingDirs:    installer.NewScaffolder(cfg.RequiredDirs).Missing(abs),
				HasManifest:    exists(layout.ManifestPath(abs)),
				HasConfig:      exists(layout.ConfigPath(abs)),
				HasDaemonEntry: exists(layout.DaemonPath(abs)),
				ModelServerUp:  daemon.ProbeOllama(cmd.Context(), cfg.Ollama.TagsURL, cfg.Ollama.Timeout),
			}

			if jsonOutput {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Install target: %s\n", report.Path)
			fmt.Printf("  framework present:  %s\n", mark(report.Installed))
			fmt.Printf("  layout complete:    %s\n", mark(len(report.MissingDirs) == 0))
			for _, missing := range report.MissingDirs {
				fmt.Printf("    missing: %s\n", missing)
			}
			fmt.Printf("  dependency manifest: %s\n", mark(report.HasManifest))
			fmt.Printf("  config present:      %s\n", mark(report.HasConfig))
			fmt.Printf("  daemon entry point:  %s\n", mark(report.HasDaemonEntry))
			fmt.Printf("  ollama reachable:    %s\n", mark(report.ModelServerUp))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "install directory to inspect (default from config)")

	return cmd
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
