package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/install"
)

// --- Test helpers ---

// setupInstallation creates a temp dir with a .specwright/ installation
// (all four production areas) and changes cwd to it. Returns the layout
// and a cleanup function.
func setupInstallation(t *testing.T) (install.Layout, func()) {
	t.Helper()
	tmpDir := t.TempDir()

	layout := install.NewLayout(filepath.Join(tmpDir, install.RootDirName))
	for _, area := range layout.ProductionAreas() {
		if err := os.MkdirAll(area.Path, 0o755); err != nil {
			t.Fatalf("setup: mkdir %s: %v", area.Name, err)
		}
	}

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("setup: getwd: %v", err)
	}

	// Change to temp dir so findLayout() works.
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("setup: chdir: %v", err)
	}

	cleanup := func() {
		_ = os.Chdir(origDir)
	}

	return layout, cleanup
}

// writeProduction puts a file into a production area.
func writeProduction(t *testing.T, layout install.Layout, area, name, content string) string {
	t.Helper()
	path := filepath.Join(layout.Root, area, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("setup: mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: write %s: %v", name, err)
	}
	return path
}

// request builds a CallToolRequest with the given arguments.
func request(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
