package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReposTool_StatusUnlinked(t *testing.T) {
	_, cleanup := setupInstallation(t)
	defer cleanup()

	result, err := NewReposTool().Handle(context.Background(), request(map[string]interface{}{
		"action": "status",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "owns its commands area") {
		t.Errorf("unlinked status not reported, got: %s", getResultText(result))
	}
}

func TestReposTool_LinkThenStatus(t *testing.T) {
	layout, cleanup := setupInstallation(t)
	defer cleanup()

	// A real commands dir blocks linking.
	result, err := NewReposTool().Handle(context.Background(), request(map[string]interface{}{
		"action": "link",
		"target": t.TempDir(),
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("link should refuse to replace a real commands directory")
	}

	// Clear it out and link.
	if err := os.RemoveAll(layout.CommandsPath()); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	shared := filepath.Join(t.TempDir(), "commands")
	if err := os.MkdirAll(shared, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	result, err = NewReposTool().Handle(context.Background(), request(map[string]interface{}{
		"action": "link",
		"target": shared,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("link returned error: %s", getResultText(result))
	}

	result, err = NewReposTool().Handle(context.Background(), request(map[string]interface{}{
		"action": "status",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "Linked:** yes") {
		t.Errorf("linked status not reported, got: %s", text)
	}
	if !strings.Contains(text, "Link Registry") {
		t.Errorf("registry not listed, got: %s", text)
	}
}

func TestReposTool_UnknownAction(t *testing.T) {
	_, cleanup := setupInstallation(t)
	defer cleanup()

	result, err := NewReposTool().Handle(context.Background(), request(map[string]interface{}{
		"action": "unlink",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("unknown action should be a tool error")
	}
}
