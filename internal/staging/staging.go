package staging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/specwright/specwright/internal/install"
)

// MetadataFile is the filename of the persisted pipeline record inside
// the staging tree.
const MetadataFile = "staging.json"

// InitializeStaging starts a new transformation attempt for targetVersion.
//
// It refuses to start if any staging tree already exists — presence of a
// tree on disk is the mutual-exclusion mechanism across separate process
// invocations, so an existing tree (even an orphaned one from a crashed
// run) must be resolved before a new attempt begins.
//
// On success the staging tree holds one empty subdirectory per production
// area, a baseline snapshot of every production file's modification time,
// and a persisted status of "staging".
func InitializeStaging(layout install.Layout, targetVersion string) (*Context, error) {
	if targetVersion == "" {
		return nil, fmt.Errorf("target version is required")
	}

	stagingRoot := layout.StagingRoot()

	// Guard: at most one attempt, for any version, at a time.
	if existing, err := findExistingTree(stagingRoot); err != nil {
		return nil, err
	} else if existing != "" {
		return nil, &AlreadyStagingError{
			Version: filepath.Base(existing),
			RootDir: existing,
		}
	}

	rootDir := filepath.Join(stagingRoot, targetVersion)
	areas := map[string]string{}
	for _, area := range layout.ProductionAreas() {
		if err := os.MkdirAll(filepath.Join(rootDir, area.Name), 0o755); err != nil {
			return nil, fmt.Errorf("creating staging area %s: %w", area.Name, err)
		}
		areas[area.Name] = area.Path
	}

	baseline, err := captureBaseline(layout)
	if err != nil {
		// Leave nothing behind on a failed init.
		_ = os.RemoveAll(rootDir)
		return nil, fmt.Errorf("capturing baseline: %w", err)
	}

	now := timeNow().UTC().Format(time.RFC3339)
	ctx := &Context{
		RootDir:       rootDir,
		TargetVersion: targetVersion,
		Metadata: &Metadata{
			TargetVersion: targetVersion,
			Status:        StatusStaging,
			Baseline:      baseline,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		areas: areas,
	}

	if err := ctx.save(); err != nil {
		_ = os.RemoveAll(rootDir)
		return nil, err
	}

	return ctx, nil
}

// Open re-opens an existing staging tree from disk. This is the crash
// recovery path: after a process dies mid-attempt, the restarted process
// must not reuse an in-memory handle — it re-reads staging.json, which is
// the sole source of truth, and resumes the state machine from there.
//
// Returns (nil, nil) when no staging tree exists.
func Open(layout install.Layout) (*Context, error) {
	rootDir, err := findExistingTree(layout.StagingRoot())
	if err != nil {
		return nil, err
	}
	if rootDir == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(rootDir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", MetadataFile, err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MetadataFile, err)
	}

	areas := map[string]string{}
	for _, area := range layout.ProductionAreas() {
		areas[area.Name] = area.Path
	}

	return &Context{
		RootDir:       rootDir,
		TargetVersion: meta.TargetVersion,
		Metadata:      &meta,
		areas:         areas,
	}, nil
}

// GetOutputDirs returns the absolute paths agents must write into.
// It is a pure function of the context — no I/O.
func GetOutputDirs(ctx *Context) OutputDirs {
	return OutputDirs{
		ScriptsDir:  filepath.Join(ctx.RootDir, install.ScriptsDir),
		CommandsDir: filepath.Join(ctx.RootDir, install.CommandsDir),
		AgentsDir:   filepath.Join(ctx.RootDir, install.AgentsDir),
		SkillsDir:   filepath.Join(ctx.RootDir, install.SkillsDir),
	}
}

// findExistingTree returns the path of the first staging tree under
// stagingRoot, or "" when none exists. Stray files (anything that is not
// a directory) are ignored.
func findExistingTree(stagingRoot string) (string, error) {
	entries, err := os.ReadDir(stagingRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading staging root: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(stagingRoot, entry.Name()), nil
		}
	}
	return "", nil
}

// save marshals and writes the metadata record to staging.json.
func (c *Context) save() error {
	c.Metadata.UpdatedAt = timeNow().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(c.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", MetadataFile, err)
	}
	if err := os.WriteFile(filepath.Join(c.RootDir, MetadataFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", MetadataFile, err)
	}
	return nil
}

// productionPath maps a staging-relative path ("scripts/check.ts") to its
// mirrored production location.
func (c *Context) productionPath(relPath string) (string, bool) {
	area, rest, ok := splitArea(relPath)
	if !ok {
		return "", false
	}
	prodRoot, ok := c.areas[area]
	if !ok {
		return "", false
	}
	return filepath.Join(prodRoot, rest), true
}

// splitArea splits "scripts/sub/check.ts" into ("scripts", "sub/check.ts").
func splitArea(relPath string) (area, rest string, ok bool) {
	relPath = filepath.ToSlash(relPath)
	for i := 0; i < len(relPath); i++ {
		if relPath[i] == '/' {
			return relPath[:i], filepath.FromSlash(relPath[i+1:]), true
		}
	}
	return "", "", false
}

// stagedFiles walks the staging tree and returns every staged file as a
// path relative to the staging root ("scripts/check.ts"), skipping the
// metadata record itself. Order is deterministic (filepath.WalkDir is
// lexical).
func (c *Context) stagedFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(c.RootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(c.RootDir, path)
		if err != nil {
			return err
		}
		if rel == MetadataFile {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking staging tree: %w", err)
	}
	return files, nil
}
