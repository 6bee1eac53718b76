package staging

import (
	"fmt"
	"os"
	"sort"
)

// DetectConflicts compares production against the baseline snapshot and
// returns every out-of-band change that would make a commit unsafe.
//
// Two classes of file are examined:
//
//   - every production file the staging tree would overwrite: a conflict
//     if its current mtime differs from the baseline mtime, or if it did
//     not exist at baseline at all (created while staging was in flight);
//   - every file that existed in the baseline and no longer exists: a
//     deletion is a conflict too, never silently ignored.
//
// Production files untouched by staging and unchanged since baseline are
// never reported. The result is sorted by path and contains every
// conflict, so the caller can explain the full reason a commit is blocked.
func DetectConflicts(ctx *Context) ([]Conflict, error) {
	staged, err := ctx.stagedFiles()
	if err != nil {
		return nil, err
	}

	var conflicts []Conflict

	// Files staging would overwrite.
	for _, rel := range staged {
		prodPath, ok := ctx.productionPath(rel)
		if !ok {
			continue
		}
		baselineMTime, inBaseline := ctx.Metadata.Baseline[rel]

		info, err := os.Stat(prodPath)
		if err != nil {
			if os.IsNotExist(err) {
				// Newly created by the agents; deletion of baselined files
				// is handled in the pass below.
				continue
			}
			return nil, fmt.Errorf("checking %s: %w", rel, err)
		}

		if !inBaseline {
			// Appeared after the baseline was captured.
			conflicts = append(conflicts, Conflict{Path: rel, CurrentMTime: info.ModTime()})
			continue
		}
		if !info.ModTime().Equal(baselineMTime) {
			conflicts = append(conflicts, Conflict{Path: rel, BaselineMTime: baselineMTime, CurrentMTime: info.ModTime()})
		}
	}

	// Baselined files that vanished.
	for rel, baselineMTime := range ctx.Metadata.Baseline {
		prodPath, ok := ctx.productionPath(rel)
		if !ok {
			continue
		}
		if _, err := os.Stat(prodPath); os.IsNotExist(err) {
			conflicts = append(conflicts, Conflict{Path: rel, BaselineMTime: baselineMTime})
		} else if err != nil {
			return nil, fmt.Errorf("checking %s: %w", rel, err)
		}
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Path < conflicts[j].Path })
	return conflicts, nil
}
