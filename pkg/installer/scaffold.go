package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Scaffolder ensures the framework's required directory set exists under the
// install target. It is idempotent: pre-existing directories are left
// untouched, contents and permissions included.
type Scaffolder struct {
	requiredDirs []string
}

// NewScaffolder creates a scaffolder for the given relative directory names.
func NewScaffolder(requiredDirs []string) *Scaffolder {
	return &Scaffolder{requiredDirs: requiredDirs}
}

// Scaffold creates every missing required directory under root and returns
// the relative names it created this run. A same-named entry that is not a
// directory is an unrecoverable collision.
func (s *Scaffolder) Scaffold(root string) ([]string, error) {
	var created []string

	for _, name := range s.requiredDirs {
		dir := filepath.Join(root, name)

		info, err := os.Stat(dir)
		switch {
		case err == nil && info.IsDir():
			continue
		case err == nil:
			return created, fmt.Errorf(
				"required directory %s collides with an existing non-directory entry", name)
		case !os.IsNotExist(err):
			return created, fmt.Errorf("failed to inspect %s: %w", dir, err)
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		created = append(created, name)
	}

	if len(created) > 0 {
		log.Info().
			Strs("dirs", created).
			Str("root", root).
			Msg("Created required directories")
	} else {
		log.Debug().Str("root", root).Msg("Required directories already present")
	}
	return created, nil
}

// Missing returns the required directory names absent under root, for
// read-only status inspection.
func (s *Scaffolder) Missing(root string) []string {
	var missing []string
	for _, name := range s.requiredDirs {
		info, err := os.Stat(filepath.Join(root, name))
		if err != nil || !info.IsDir() {
			missing = append(missing, name)
		}
	}
	return missing
}
