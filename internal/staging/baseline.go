package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/specwright/specwright/internal/install"
)

// captureBaseline records the modification time of every file currently
// present under the production areas. The snapshot is taken once, before
// any agent runs, and is immutable afterward — it exists solely so commit
// can detect out-of-band edits made while staging was in flight.
//
// Keys are installation-relative paths ("scripts/check.ts"), matching the
// staging-relative paths produced by stagedFiles.
func captureBaseline(layout install.Layout) (map[string]time.Time, error) {
	baseline := map[string]time.Time{}

	for _, area := range layout.ProductionAreas() {
		if _, err := os.Stat(area.Path); os.IsNotExist(err) {
			// Area doesn't exist yet — nothing to snapshot.
			continue
		}
		err := filepath.WalkDir(area.Path, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(area.Path, path)
			if err != nil {
				return err
			}
			baseline[filepath.Join(area.Name, rel)] = info.ModTime()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("snapshotting %s: %w", area.Name, err)
		}
	}

	return baseline, nil
}
