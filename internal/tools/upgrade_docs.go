package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/staging"
)

// UpgradeDocsDoneTool handles the sdd_upgrade_docs_done MCP tool.
// It records the outcome of the document rewrite (commands, agents,
// skills), which runs strictly after the scripts rewrite.
type UpgradeDocsDoneTool struct{}

// NewUpgradeDocsDoneTool creates an UpgradeDocsDoneTool.
func NewUpgradeDocsDoneTool() *UpgradeDocsDoneTool {
	return &UpgradeDocsDoneTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeDocsDoneTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_upgrade_docs_done",
		mcp.WithDescription(
			"Report the outcome of the document rewrite (commands, agents, skills) for "+
				"an in-flight upgrade. Only valid after sdd_upgrade_scripts_done succeeded — "+
				"document rewrites may reference the staged scripts. On success the upgrade "+
				"becomes ready to commit. On failure the entire staging tree (including the "+
				"already-staged scripts) is rolled back.",
		),
		mcp.WithBoolean("success",
			mcp.Required(),
			mcp.Description("Whether the document rewrite succeeded"),
		),
		mcp.WithArray("files_written",
			mcp.Description("Paths of the staged files, relative to their staging area directories"),
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

// Handle processes the sdd_upgrade_docs_done tool call.
func (t *UpgradeDocsDoneTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sctx, err := openStaging()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sctx == nil {
		return mcp.NewToolResultError("No upgrade is in flight. Start one with sdd_upgrade_start."), nil
	}

	result := agentReport(req)
	if err := staging.RecordDocsComplete(sctx, result); err != nil {
		var failure *staging.AgentFailureError
		if errors.As(err, &failure) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Document rewrite failed: %s\n\n"+
					"The staging tree for version %s has been rolled back, including the "+
					"staged scripts. Production was never touched. Start over with "+
					"sdd_upgrade_start.",
				failure.Cause, sctx.TargetVersion,
			)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf(
		"# Document Rewrite Recorded\n\n"+
			"**Version:** %s\n"+
			"**Files staged:** %d\n"+
			"**Status:** %s\n\n"+
			"## Next Step\n\n"+
			"Both rewrites succeeded — the staged tree is complete. Call "+
			"`sdd_upgrade_commit` to promote every staged file to production "+
			"atomically. Commit checks for out-of-band edits to production made "+
			"since staging began and refuses to overwrite them unless forced.",
		sctx.TargetVersion, len(result.FilesWritten), sctx.Metadata.Status,
	)
	if len(result.FilesWritten) > 0 {
		response += "\n\n## Staged Documents\n\n" + bullets(result.FilesWritten)
	}

	return mcp.NewToolResultText(response), nil
}
