package installer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Tolerable/claude-bootstrap/pkg/acquire"
)

// RenderReport formats an outcome for the terminal. Fatal failures never
// reach this path; the report always describes a completed install, with or
// without warnings.
func RenderReport(outcome *Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nInstalled to %s\n\n", outcome.Path)

	switch outcome.Method {
	case acquire.MethodClone:
		b.WriteString("✓ Source acquired via git clone\n")
	case acquire.MethodArchive:
		b.WriteString("✓ Source acquired via archive download\n")
	case acquire.MethodExisting:
		b.WriteString("✓ Existing install kept in place\n")
	}

	if len(outcome.DirsCreated) > 0 {
		fmt.Fprintf(&b, "✓ Created directories: %s\n", strings.Join(outcome.DirsCreated, ", "))
	} else {
		b.WriteString("✓ Directory layout already in place\n")
	}

	if outcome.ConfigSeeded {
		b.WriteString("✓ Config created from example\n")
	}

	switch {
	case outcome.DepsSkipped:
		b.WriteString("✓ Dependency installation skipped\n")
	case outcome.DepsInstalled:
		b.WriteString("✓ Dependencies installed\n")
	}

	if outcome.DaemonStarted {
		fmt.Fprintf(&b, "✓ Daemon started (pid %d)\n", outcome.DaemonPID)
	}

	if outcome.ModelServerUp {
		b.WriteString("✓ Ollama is running\n")
	} else {
		b.WriteString("ℹ Ollama not detected (optional, for local thinking; see https://ollama.ai)\n")
	}

	if outcome.HasWarnings() {
		b.WriteString("\nWarnings:\n")
		for _, w := range outcome.Warnings {
			fmt.Fprintf(&b, "  ⚠ [%s] %s\n", w.Step, w.Message)
			if w.Remedy != "" {
				fmt.Fprintf(&b, "    → %s\n", w.Remedy)
			}
		}
	}

	b.WriteString("\nNext steps:\n")
	fmt.Fprintf(&b, "  cd %s\n", outcome.Path)
	b.WriteString("  python me.py       # test capabilities\n")
	if !outcome.DaemonStarted {
		b.WriteString("  python daemon.py   # start the daemon\n")
	}
	b.WriteString("\nEdit config.py to customize voice, models, and behavior.\n")

	return b.String()
}

// RenderJSON formats an outcome as indented JSON for machine consumption.
func RenderJSON(outcome *Outcome) (string, error) {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode outcome: %w", err)
	}
	return string(data), nil
}
