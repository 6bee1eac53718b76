// Package gitcmd wraps the git and gh command-line tools.
//
// All operations shell out to the real binaries rather than using a Go git
// library: this keeps specwright compatible with whatever the user has
// configured (SSH keys, credential helpers, aliases, gh auth), at the cost
// of requiring git and gh on PATH.
package gitcmd

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// runGit is a package-level variable for testability. Tests replace it to
// avoid invoking the real git binary.
var runGit = func(dir string, args ...string) (string, error) {
	return run(dir, "git", args...)
}

// runGH is the gh equivalent of runGit.
var runGH = func(dir string, args ...string) (string, error) {
	return run(dir, "gh", args...)
}

// run executes a command in dir and returns trimmed stdout. On failure the
// error includes stderr, which is where git puts its useful messages.
func run(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s %s: %s", name, strings.Join(args, " "), msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Git runs an arbitrary git subcommand in dir and returns trimmed stdout.
// Higher-level packages use this for operations without a dedicated wrapper
// (worktree management, for example).
func Git(dir string, args ...string) (string, error) {
	return runGit(dir, args...)
}

// CurrentBranch returns the checked-out branch name in repoDir.
func CurrentBranch(repoDir string) (string, error) {
	return runGit(repoDir, "branch", "--show-current")
}

// BranchExists reports whether a local branch exists in repoDir.
func BranchExists(repoDir, branch string) bool {
	_, err := runGit(repoDir, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// CreateBranch creates a branch off base without checking it out.
func CreateBranch(repoDir, branch, base string) error {
	if _, err := runGit(repoDir, "branch", branch, base); err != nil {
		return fmt.Errorf("creating branch %s: %w", branch, err)
	}
	return nil
}

// DefaultBranch detects the repository's default branch (main or master),
// preferring the remote HEAD when origin is configured.
func DefaultBranch(repoDir string) (string, error) {
	if out, err := runGit(repoDir, "symbolic-ref", "refs/remotes/origin/HEAD", "--short"); err == nil {
		// "origin/main" → "main"
		if idx := strings.LastIndex(out, "/"); idx >= 0 {
			return out[idx+1:], nil
		}
		return out, nil
	}
	// No remote HEAD — fall back to whichever of main/master exists.
	for _, candidate := range []string{"main", "master"} {
		if BranchExists(repoDir, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not detect default branch in %s", repoDir)
}

// RepoRoot returns the top-level directory of the repository containing dir.
func RepoRoot(dir string) (string, error) {
	out, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	return out, nil
}

// --- Pull requests (gh) ---

// PRInfo is the subset of pull-request fields specwright tracks.
type PRInfo struct {
	Number int
	URL    string
	State  string
}

// PRView looks up the PR associated with a branch via gh. Returns nil
// (not an error) when no PR exists for the branch.
func PRView(repoDir, branch string) (*PRInfo, error) {
	out, err := runGH(repoDir, "pr", "view", branch, "--json", "number,url,state", "--jq", ".number,.url,.state")
	if err != nil {
		if strings.Contains(err.Error(), "no pull requests found") {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("unexpected gh pr view output: %q", out)
	}
	number, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, fmt.Errorf("parsing PR number from %q: %w", lines[0], err)
	}
	return &PRInfo{
		Number: number,
		URL:    strings.TrimSpace(lines[1]),
		State:  strings.ToLower(strings.TrimSpace(lines[2])),
	}, nil
}

// PRCreate opens a pull request for branch against base and returns its URL.
func PRCreate(repoDir, branch, base, title, body string) (string, error) {
	url, err := runGH(repoDir, "pr", "create",
		"--head", branch,
		"--base", base,
		"--title", title,
		"--body", body,
	)
	if err != nil {
		return "", fmt.Errorf("creating PR for %s: %w", branch, err)
	}
	return url, nil
}
