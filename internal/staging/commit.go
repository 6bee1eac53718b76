package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Commit promotes every staged file to its mirrored production location
// and deletes the staging tree.
//
// The conflict detector runs first: if production changed since baseline
// capture and force is false, the commit is blocked with a ConflictError
// and neither production nor the staging tree is touched — the operator
// can inspect and retry (or re-run with force).
//
// The move pass itself is deliberately not a per-file transaction. The
// staging tree is the only record of work not yet in production, so once
// the first file has moved the operation continues to completion rather
// than partially aborting. Files that exist in production are overwritten;
// files that don't are created, with intermediate directories as needed.
// Production files outside the staged set are never touched.
//
// Returns the full list of committed paths (installation-relative).
func Commit(ctx *Context, force bool) ([]string, error) {
	if ctx.Metadata.Status != StatusReady {
		return nil, fmt.Errorf("cannot commit in status %q — both agents must succeed first", ctx.Metadata.Status)
	}

	conflicts, err := DetectConflicts(ctx)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 && !force {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	staged, err := ctx.stagedFiles()
	if err != nil {
		return nil, err
	}

	committed := make([]string, 0, len(staged))
	for _, rel := range staged {
		prodPath, ok := ctx.productionPath(rel)
		if !ok {
			return nil, fmt.Errorf("staged file %q is outside every production area", rel)
		}
		if err := moveFile(filepath.Join(ctx.RootDir, rel), prodPath); err != nil {
			return nil, fmt.Errorf("moving %s: %w", rel, err)
		}
		committed = append(committed, rel)
	}

	// All files are in production; the staging tree holds only empty
	// directories and the metadata record. Deleting it marks the attempt
	// committed — there is no undo past this point.
	if err := os.RemoveAll(ctx.RootDir); err != nil {
		return nil, fmt.Errorf("removing staging tree: %w", err)
	}

	ctx.Metadata.Status = StatusCommitted
	return committed, nil
}

// moveFile renames src to dst, creating dst's parent directories. When
// rename crosses filesystems it falls back to copy+remove.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(dst), err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Cross-device fallback.
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
