package gitcmd

import (
	"fmt"
	"strings"
	"testing"
)

// fakeGit swaps runGit for a canned implementation and restores it after
// the test. Same injection pattern as staging's timeNow.
func fakeGit(t *testing.T, fn func(dir string, args ...string) (string, error)) {
	t.Helper()
	orig := runGit
	runGit = fn
	t.Cleanup(func() { runGit = orig })
}

func fakeGH(t *testing.T, fn func(dir string, args ...string) (string, error)) {
	t.Helper()
	orig := runGH
	runGH = fn
	t.Cleanup(func() { runGH = orig })
}

func TestCurrentBranch(t *testing.T) {
	fakeGit(t, func(dir string, args ...string) (string, error) {
		if strings.Join(args, " ") != "branch --show-current" {
			t.Errorf("unexpected args: %v", args)
		}
		return "spec/add-auth", nil
	})

	got, err := CurrentBranch("/repo")
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if got != "spec/add-auth" {
		t.Errorf("CurrentBranch = %s, want spec/add-auth", got)
	}
}

func TestBranchExists(t *testing.T) {
	fakeGit(t, func(dir string, args ...string) (string, error) {
		if strings.HasSuffix(args[len(args)-1], "refs/heads/exists") {
			return "", nil
		}
		return "", fmt.Errorf("not found")
	})

	if !BranchExists("/repo", "exists") {
		t.Error("BranchExists should report true for an existing branch")
	}
	if BranchExists("/repo", "missing") {
		t.Error("BranchExists should report false for a missing branch")
	}
}

func TestDefaultBranch_PrefersRemoteHead(t *testing.T) {
	fakeGit(t, func(dir string, args ...string) (string, error) {
		if args[0] == "symbolic-ref" {
			return "origin/main", nil
		}
		return "", fmt.Errorf("unexpected call: %v", args)
	})

	got, err := DefaultBranch("/repo")
	if err != nil {
		t.Fatalf("DefaultBranch failed: %v", err)
	}
	if got != "main" {
		t.Errorf("DefaultBranch = %s, want main", got)
	}
}

func TestDefaultBranch_FallsBackToLocal(t *testing.T) {
	fakeGit(t, func(dir string, args ...string) (string, error) {
		switch args[0] {
		case "symbolic-ref":
			return "", fmt.Errorf("no remote HEAD")
		case "show-ref":
			if strings.HasSuffix(args[len(args)-1], "refs/heads/master") {
				return "", nil
			}
			return "", fmt.Errorf("not found")
		}
		return "", fmt.Errorf("unexpected call: %v", args)
	})

	got, err := DefaultBranch("/repo")
	if err != nil {
		t.Fatalf("DefaultBranch failed: %v", err)
	}
	if got != "master" {
		t.Errorf("DefaultBranch = %s, want master", got)
	}
}

func TestPRView_ParsesFields(t *testing.T) {
	fakeGH(t, func(dir string, args ...string) (string, error) {
		return "42\nhttps://github.com/acme/app/pull/42\nOPEN", nil
	})

	pr, err := PRView("/repo", "spec/add-auth")
	if err != nil {
		t.Fatalf("PRView failed: %v", err)
	}
	if pr.Number != 42 {
		t.Errorf("Number = %d, want 42", pr.Number)
	}
	if pr.URL != "https://github.com/acme/app/pull/42" {
		t.Errorf("URL = %s", pr.URL)
	}
	if pr.State != "open" {
		t.Errorf("State = %s, want open", pr.State)
	}
}

func TestPRView_NoPRReturnsNil(t *testing.T) {
	fakeGH(t, func(dir string, args ...string) (string, error) {
		return "", fmt.Errorf("gh pr view: no pull requests found for branch %q", args[2])
	})

	pr, err := PRView("/repo", "spec/lonely")
	if err != nil {
		t.Fatalf("PRView should not error when no PR exists: %v", err)
	}
	if pr != nil {
		t.Errorf("PRView = %+v, want nil", pr)
	}
}
