package worktree

import (
	"path/filepath"
	"testing"
)

func TestPathFor_StripsBranchPrefix(t *testing.T) {
	got := PathFor(filepath.Join("/home", "u", "app"), "spec/add-auth")
	want := filepath.Join("/home", "u", "app-add-auth")
	if got != want {
		t.Errorf("PathFor = %s, want %s", got, want)
	}
}

func TestPathFor_PlainBranchName(t *testing.T) {
	got := PathFor(filepath.Join("/home", "u", "app"), "hotfix")
	want := filepath.Join("/home", "u", "app-hotfix")
	if got != want {
		t.Errorf("PathFor = %s, want %s", got, want)
	}
}
