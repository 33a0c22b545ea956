// Package config provides installer configuration with defaults, optional
// YAML overrides, and struct validation.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Tolerable/claude-bootstrap/pkg/layout"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all installer settings. Zero values are filled in from
// Default before validation, so a partial YAML file only needs to name the
// settings it changes.
type Config struct {
	// RepoURL is the git remote of the agent framework.
	RepoURL string `yaml:"repo_url" validate:"required,url"`

	// ArchiveURL is the zip archive of the framework's main branch, used
	// when no git client is available.
	ArchiveURL string `yaml:"archive_url" validate:"required,url"`

	// DefaultDir is the install target used when --dir is not given.
	DefaultDir string `yaml:"default_dir" validate:"required"`

	// RequiredDirs is the framework's directory layout contract. It
	// defaults to the layout package's fixed set; overriding it is only
	// useful when tracking an unreleased framework layout.
	RequiredDirs []string `yaml:"required_dirs" validate:"min=1,dive,required"`

	// PythonCandidates are interpreter names tried in order on PATH.
	PythonCandidates []string `yaml:"python_candidates" validate:"min=1,dive,required"`

	// Verify controls the post-install smoke test of the framework.
	Verify bool `yaml:"verify"`

	// Timeouts bounds the long-running steps.
	Timeouts Timeouts `yaml:"timeouts"`

	// Daemon configures the optional daemon launch.
	Daemon Daemon `yaml:"daemon"`

	// Ollama configures the informational model-server probe.
	Ollama Ollama `yaml:"ollama"`
}

// Timeouts bounds the network and subprocess steps. A zero value means the
// step runs without its own deadline (the run context still applies).
type Timeouts struct {
	// Acquire bounds a clone or archive download.
	Acquire time.Duration `yaml:"acquire"`

	// Deps bounds the dependency installation.
	Deps time.Duration `yaml:"deps"`

	// Verify bounds the post-install smoke test.
	Verify time.Duration `yaml:"verify"`
}

// Daemon configures the launch and liveness check of the framework daemon.
type Daemon struct {
	// StartupWait is how long the launcher observes the daemon before
	// deciding whether it is alive.
	StartupWait time.Duration `yaml:"startup_wait" validate:"min=0"`

	// PollInterval is the process liveness poll cadence.
	PollInterval time.Duration `yaml:"poll_interval" validate:"min=0"`

	// HeartbeatFile is a path relative to the install target that the
	// framework touches once its daemon is serving. Empty disables the
	// file-based liveness signal and leaves only the process check.
	HeartbeatFile string `yaml:"heartbeat_file"`
}

// Ollama configures the optional local model-server probe. The probe is
// informational only and never affects the install outcome.
type Ollama struct {
	// TagsURL is the liveness endpoint of the local Ollama server.
	TagsURL string `yaml:"tags_url" validate:"omitempty,url"`

	// Timeout bounds the probe request.
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

// Environment variables overriding the corresponding settings. They take
// precedence over both the defaults and the YAML file.
const (
	EnvRepoURL    = "CLAUDE_BOOTSTRAP_REPO_URL"
	EnvArchiveURL = "CLAUDE_BOOTSTRAP_ARCHIVE_URL"
	EnvDefaultDir = "CLAUDE_BOOTSTRAP_DIR"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		RepoURL:          "https://github.com/wetwi/claude-agent",
		ArchiveURL:       "https://github.com/wetwi/claude-agent/archive/refs/heads/main.zip",
		DefaultDir:       "claude-agent",
		RequiredDirs:     layout.RequiredDirs(),
		PythonCandidates: []string{"python3", "python"},
		Verify:           true,
		Timeouts: Timeouts{
			Acquire: 5 * time.Minute,
			Deps:    10 * time.Minute,
			Verify:  10 * time.Second,
		},
		Daemon: Daemon{
			StartupWait:  3 * time.Second,
			PollInterval: 200 * time.Millisecond,
		},
		Ollama: Ollama{
			TagsURL: "http://localhost:11434/api/tags",
			Timeout: 2 * time.Second,
		},
	}
}

// Load returns the default configuration overlaid with the YAML file at
// path, if path is non-empty. The result is validated before being returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRepoURL); v != "" {
		c.RepoURL = v
	}
	if v := os.Getenv(EnvArchiveURL); v != "" {
		c.ArchiveURL = v
	}
	if v := os.Getenv(EnvDefaultDir); v != "" {
		c.DefaultDir = v
	}
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
