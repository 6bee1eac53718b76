package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/staging"
)

// UpgradeScriptsDoneTool handles the sdd_upgrade_scripts_done MCP tool.
// The assistant calls it after rewriting the imperative scripts into the
// staging tree, reporting success or failure. A failure report rolls the
// whole attempt back.
type UpgradeScriptsDoneTool struct{}

// NewUpgradeScriptsDoneTool creates an UpgradeScriptsDoneTool.
func NewUpgradeScriptsDoneTool() *UpgradeScriptsDoneTool {
	return &UpgradeScriptsDoneTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeScriptsDoneTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_upgrade_scripts_done",
		mcp.WithDescription(
			"Report the outcome of the scripts rewrite for an in-flight upgrade. "+
				"Call after writing every rewritten script into the staging scripts "+
				"directory. On success the pipeline advances and the docs rewrite can "+
				"begin. On failure the entire staging tree is rolled back and production "+
				"stays untouched. Writing zero files is still a valid success (nothing "+
				"needed rewriting).",
		),
		mcp.WithBoolean("success",
			mcp.Required(),
			mcp.Description("Whether the scripts rewrite succeeded"),
		),
		mcp.WithArray("files_written",
			mcp.Description("Paths of the staged files, relative to the staging scripts directory"),
			mcp.WithStringItems(),
		),
		mcp.WithString("error",
			mcp.Description("What went wrong (required when success is false)"),
		),
		mcp.WithNumber("duration_ms",
			mcp.Description("How long the rewrite took, in milliseconds"),
		),
	)
}

// Handle processes the sdd_upgrade_scripts_done tool call.
func (t *UpgradeScriptsDoneTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sctx, err := openStaging()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sctx == nil {
		return mcp.NewToolResultError("No upgrade is in flight. Start one with sdd_upgrade_start."), nil
	}

	result := agentReport(req)
	if err := staging.RecordScriptsComplete(sctx, result); err != nil {
		var failure *staging.AgentFailureError
		if errors.As(err, &failure) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Scripts rewrite failed: %s\n\n"+
					"The staging tree for version %s has been rolled back. Production was "+
					"never touched. Fix the underlying problem and start over with "+
					"sdd_upgrade_start.",
				failure.Cause, sctx.TargetVersion,
			)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf(
		"# Scripts Rewrite Recorded\n\n"+
			"**Version:** %s\n"+
			"**Files staged:** %d\n"+
			"**Status:** %s\n\n"+
			"## Next Step\n\n"+
			"Rewrite the command, agent, and skill documents into their staging "+
			"directories, then call `sdd_upgrade_docs_done`.",
		sctx.TargetVersion, len(result.FilesWritten), sctx.Metadata.Status,
	)
	if len(result.FilesWritten) > 0 {
		response += "\n\n## Staged Scripts\n\n" + bullets(result.FilesWritten)
	}

	return mcp.NewToolResultText(response), nil
}
