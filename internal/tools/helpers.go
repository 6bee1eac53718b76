// Package tools implements the MCP tool handlers.
//
// Each tool is a struct that receives its dependencies at construction
// (DIP) and exposes a Definition for registration plus a Handle method
// compatible with mcp-go's CallToolRequest signature.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on interfaces (branches.Store) or small packages, not globals
// - User mistakes come back as mcp.NewToolResultError (the assistant can
//   correct course); internal failures come back as Go errors
package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/install"
	"github.com/specwright/specwright/internal/staging"
)

// findLayout locates the installation by walking up from the working
// directory. Tools work from any subdirectory of the project.
func findLayout() (install.Layout, error) {
	return install.FindFromCwd()
}

// boolArg extracts an optional boolean argument from the raw arguments map.
func boolArg(req mcp.CallToolRequest, key string, def bool) bool {
	if v, ok := req.GetArguments()[key].(bool); ok {
		return v
	}
	return def
}

// intArg extracts an optional numeric argument. JSON numbers arrive as
// float64.
func intArg(req mcp.CallToolRequest, key string, def int) int {
	if v, ok := req.GetArguments()[key].(float64); ok {
		return int(v)
	}
	return def
}

// stringSliceArg extracts an optional array-of-strings argument, skipping
// non-string elements.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	var result []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// agentReport assembles an AgentResult from the common report arguments
// shared by sdd_upgrade_scripts_done and sdd_upgrade_docs_done.
func agentReport(req mcp.CallToolRequest) staging.AgentResult {
	return staging.AgentResult{
		Success:      boolArg(req, "success", false),
		FilesWritten: stringSliceArg(req, "files_written"),
		Error:        req.GetString("error", ""),
		DurationMS:   int64(intArg(req, "duration_ms", 0)),
	}
}

// openStaging loads the in-flight staging context, distinguishing "no
// upgrade in flight" (nil context, nil error) from real failures.
func openStaging() (*staging.Context, error) {
	layout, err := findLayout()
	if err != nil {
		return nil, err
	}
	return staging.Open(layout)
}

// bullets renders a string slice as a markdown bullet list.
func bullets(items []string) string {
	out := ""
	for _, item := range items {
		out += fmt.Sprintf("- `%s`\n", item)
	}
	return out
}
