// Package layout defines the on-disk contract of the claude-agent framework.
// The installer does not interpret any of these files; it only guarantees they
// are where the framework expects them to be.
package layout

import "path/filepath"

// Well-known entries inside an install target. These names are fixed by the
// framework, not by the installer.
const (
	// SentinelFile marks a directory as a populated claude-agent install.
	SentinelFile = "me.py"

	// DaemonEntry is the framework's background process entry point.
	DaemonEntry = "daemon.py"

	// Manifest is the framework's Python dependency manifest.
	Manifest = "requirements.txt"

	// ConfigFile is the framework's active configuration.
	ConfigFile = "config.py"

	// ConfigExample is the template the installer seeds ConfigFile from.
	ConfigExample = "config.example.py"

	// GitDir marks a target acquired via git clone.
	GitDir = ".git"
)

// RequiredDirs is the ordered set of directories the framework expects under
// its install root. Scaffolding creates them; the framework owns their
// contents afterwards.
func RequiredDirs() []string {
	return []string{
		"vault",
		filepath.Join("vault", "Daemon Thoughts"),
		"outbox",
		"memory",
		"snapshots",
	}
}

// SentinelPath returns the path of the install sentinel under root.
func SentinelPath(root string) string {
	return filepath.Join(root, SentinelFile)
}

// DaemonPath returns the path of the daemon entry point under root.
func DaemonPath(root string) string {
	return filepath.Join(root, DaemonEntry)
}

// ManifestPath returns the path of the dependency manifest under root.
func ManifestPath(root string) string {
	return filepath.Join(root, Manifest)
}

// ConfigPath returns the path of the active config under root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// ConfigExamplePath returns the path of the config template under root.
func ConfigExamplePath(root string) string {
	return filepath.Join(root, ConfigExample)
}

// GitDirPath returns the path of the git metadata directory under root.
func GitDirPath(root string) string {
	return filepath.Join(root, GitDir)
}
