package tools

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/history"
	"github.com/specwright/specwright/internal/staging"
)

// UpgradeCommitTool handles the sdd_upgrade_commit MCP tool.
// It promotes every staged file to production atomically and records the
// attempt in the history log.
type UpgradeCommitTool struct {
	history *history.Store // nil when the history subsystem is unavailable
}

// NewUpgradeCommitTool creates an UpgradeCommitTool. The history store may
// be nil; commits still work, they just go unrecorded.
func NewUpgradeCommitTool(hist *history.Store) *UpgradeCommitTool {
	return &UpgradeCommitTool{history: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeCommitTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_upgrade_commit",
		mcp.WithDescription(
			"Commit an in-flight upgrade: move every staged file to its production "+
				"location and delete the staging tree. Requires both rewrites to have "+
				"succeeded. If any production file was modified, deleted, or created "+
				"out-of-band since staging began, the commit is blocked and every "+
				"conflicting file is listed — re-run with force=true to overwrite anyway.",
		),
		mcp.WithBoolean("force",
			mcp.Description("Commit even when production changed since staging began (default false)"),
		),
	)
}

// Handle processes the sdd_upgrade_commit tool call.
func (t *UpgradeCommitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sctx, err := openStaging()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sctx == nil {
		return mcp.NewToolResultError("No upgrade is in flight. Start one with sdd_upgrade_start."), nil
	}

	force := boolArg(req, "force", false)
	committed, err := staging.Commit(sctx, force)
	if err != nil {
		if ce, ok := staging.AsConflictError(err); ok {
			var b strings.Builder
			fmt.Fprintf(&b, "# Commit Blocked\n\n"+
				"%d production file(s) changed since staging began:\n\n", len(ce.Conflicts))
			for _, c := range ce.Conflicts {
				fmt.Fprintf(&b, "- %s\n", c.Describe())
			}
			b.WriteString("\nNothing was committed and the staging tree is intact. " +
				"Review the files above, then either roll back with sdd_upgrade_rollback " +
				"or re-run sdd_upgrade_commit with force=true to overwrite them.")
			return mcp.NewToolResultError(b.String()), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	t.record(sctx, history.OutcomeCommitted, len(committed), "")

	response := fmt.Sprintf(
		"# Upgrade Committed\n\n"+
			"**Version:** %s\n"+
			"**Files promoted:** %d\n\n"+
			"%s\n"+
			"The staging tree is gone; production now carries version %s. "+
			"Update config.yaml's template_version if you manage it by hand.",
		sctx.TargetVersion, len(committed), bullets(committed), sctx.TargetVersion,
	)

	return mcp.NewToolResultText(response), nil
}

// record writes the attempt to the history log, best-effort.
func (t *UpgradeCommitTool) record(sctx *staging.Context, outcome history.Outcome, files int, reason string) {
	if t.history == nil {
		return
	}
	duration := attemptDuration(sctx)
	if _, err := t.history.Record(sctx.TargetVersion, outcome, files, reason, duration); err != nil {
		log.Printf("recording upgrade attempt: %v", err)
	}
}

// attemptDuration measures from staging initialization to now.
func attemptDuration(sctx *staging.Context) time.Duration {
	started, err := time.Parse(time.RFC3339, sctx.Metadata.CreatedAt)
	if err != nil {
		return 0
	}
	return time.Since(started)
}
