package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultDir != "claude-agent" {
		t.Errorf("unexpected default dir %q", cfg.DefaultDir)
	}
	if len(cfg.RequiredDirs) == 0 {
		t.Error("defaults must carry the framework layout")
	}
	if !cfg.Verify {
		t.Error("verification defaults to on")
	}
}

func TestLoadAppliesPartialOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	content := `
default_dir: /opt/claude-agent
timeouts:
  acquire: 30s
daemon:
  heartbeat_file: outbox/.daemon-alive
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultDir != "/opt/claude-agent" {
		t.Errorf("override not applied, got %q", cfg.DefaultDir)
	}
	if cfg.Timeouts.Acquire != 30*time.Second {
		t.Errorf("timeout override not applied, got %s", cfg.Timeouts.Acquire)
	}
	if cfg.Daemon.HeartbeatFile != "outbox/.daemon-alive" {
		t.Errorf("heartbeat override not applied, got %q", cfg.Daemon.HeartbeatFile)
	}

	// Untouched settings keep their defaults.
	if cfg.RepoURL != Default().RepoURL {
		t.Errorf("repo URL must keep its default, got %q", cfg.RepoURL)
	}
	if cfg.Timeouts.Deps != Default().Timeouts.Deps {
		t.Errorf("deps timeout must keep its default, got %s", cfg.Timeouts.Deps)
	}
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	if err := os.WriteFile(path, []byte("default_dir: /from/file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDefaultDir, "/from/env")
	t.Setenv(EnvRepoURL, "https://example.com/fork/claude-agent")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultDir != "/from/env" {
		t.Errorf("environment must win over the file, got %q", cfg.DefaultDir)
	}
	if cfg.RepoURL != "https://example.com/fork/claude-agent" {
		t.Errorf("repo URL env override not applied, got %q", cfg.RepoURL)
	}
}

func TestLoadRejectsInvalidOverrides(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken url", "repo_url: not-a-url\n"},
		{"empty dir list", "required_dirs: []\n"},
		{"unparsable yaml", "repo_url: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bootstrap.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected a load failure")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("an explicitly named but missing config file is an error")
	}
}
