package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/history"
	"github.com/specwright/specwright/internal/staging"
)

// UpgradeRollbackTool handles the sdd_upgrade_rollback MCP tool.
// It discards an in-flight upgrade unconditionally.
type UpgradeRollbackTool struct {
	history *history.Store // nil when the history subsystem is unavailable
}

// NewUpgradeRollbackTool creates an UpgradeRollbackTool.
func NewUpgradeRollbackTool(hist *history.Store) *UpgradeRollbackTool {
	return &UpgradeRollbackTool{history: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeRollbackTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_upgrade_rollback",
		mcp.WithDescription(
			"Discard an in-flight upgrade: delete the staging tree and everything in "+
				"it. Production is never touched. Works from any pipeline state, including "+
				"a half-finished attempt left behind by a crash. Safe to retry.",
		),
		mcp.WithString("reason",
			mcp.Required(),
			mcp.Description("Why the upgrade is being abandoned (recorded in the attempt history)"),
		),
	)
}

// Handle processes the sdd_upgrade_rollback tool call.
func (t *UpgradeRollbackTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reason := req.GetString("reason", "")
	if strings.TrimSpace(reason) == "" {
		return mcp.NewToolResultError("'reason' is required — say why the upgrade is being abandoned"), nil
	}

	sctx, err := openStaging()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sctx == nil {
		return mcp.NewToolResultError("No upgrade is in flight — nothing to roll back."), nil
	}

	duration := attemptDuration(sctx)
	if err := staging.Rollback(sctx, reason); err != nil {
		return nil, fmt.Errorf("rolling back: %w", err)
	}

	if t.history != nil {
		if _, err := t.history.Record(sctx.TargetVersion, history.OutcomeRolledBack, 0, reason, duration); err != nil {
			log.Printf("recording upgrade attempt: %v", err)
		}
	}

	response := fmt.Sprintf(
		"# Upgrade Rolled Back\n\n"+
			"**Version:** %s\n"+
			"**Reason:** %s\n\n"+
			"The staging tree has been deleted; production was never touched. "+
			"A new upgrade can be started with sdd_upgrade_start at any time.",
		sctx.TargetVersion, reason,
	)

	return mcp.NewToolResultText(response), nil
}
