// Package commands implements the claude-bootstrap CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	var opts installFlags

	rootCmd := &cobra.Command{
		Use:   "claude-bootstrap",
		Short: "One-command installer for the claude-agent framework",
		Long: `claude-bootstrap provisions a machine with the claude-agent framework:

  - Acquires the source (git clone, falling back to an archive download)
  - Creates the framework's required directory layout
  - Installs the Python dependencies
  - Optionally starts the framework daemon

Running it again against the same directory is safe: an existing install
is updated in place and the directory layout is never disturbed.`,
		Example: `  # Install to ./claude-agent
  claude-bootstrap

  # Install to a custom directory and start the daemon
  claude-bootstrap --dir /opt/claude-agent --start

  # Re-run without touching dependencies
  claude-bootstrap --no-deps`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), opts)
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.Flags().StringVar(&opts.dir, "dir", "", "installation directory (default ./claude-agent)")
	rootCmd.Flags().BoolVar(&opts.start, "start", false, "start the daemon after install")
	rootCmd.Flags().BoolVar(&opts.noDeps, "no-deps", false, "skip dependency installation")
	rootCmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "skip the post-install self test")

	rootCmd.AddCommand(newStatusCommand())

	return rootCmd
}
