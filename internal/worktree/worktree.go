// Package worktree provisions git worktrees for spec branches.
//
// A worktree gives each spec branch its own checkout directory, so an AI
// assistant can work on a spec without disturbing the user's main checkout.
// Worktrees are created as siblings of the repository directory, named
// <repo>-<branch-suffix>.
package worktree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specwright/specwright/internal/gitcmd"
)

// Provision creates a worktree for branch next to repoRoot and returns its
// path. If the branch doesn't exist yet it is created off base first. An
// existing worktree at the computed path is an error — the caller should
// reuse it instead of provisioning twice.
func Provision(repoRoot, branch, base string) (string, error) {
	path := PathFor(repoRoot, branch)

	if !gitcmd.BranchExists(repoRoot, branch) {
		if err := gitcmd.CreateBranch(repoRoot, branch, base); err != nil {
			return "", err
		}
	}

	if _, err := gitcmd.Git(repoRoot, "worktree", "add", path, branch); err != nil {
		return "", fmt.Errorf("adding worktree at %s: %w", path, err)
	}
	return path, nil
}

// Remove detaches a worktree. With force, uncommitted changes are discarded.
func Remove(repoRoot, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	if _, err := gitcmd.Git(repoRoot, args...); err != nil {
		return fmt.Errorf("removing worktree %s: %w", path, err)
	}
	return nil
}

// List returns the worktree paths registered for the repository.
func List(repoRoot string) ([]string, error) {
	out, err := gitcmd.Git(repoRoot, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("listing worktrees: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "worktree "); ok {
			paths = append(paths, rest)
		}
	}
	return paths, nil
}

// PathFor computes the sibling directory a branch's worktree lives in.
// "spec/add-auth" in /home/u/app becomes /home/u/app-add-auth.
func PathFor(repoRoot, branch string) string {
	suffix := branch
	if idx := strings.LastIndex(branch, "/"); idx >= 0 {
		suffix = branch[idx+1:]
	}
	parent := filepath.Dir(repoRoot)
	return filepath.Join(parent, filepath.Base(repoRoot)+"-"+suffix)
}
