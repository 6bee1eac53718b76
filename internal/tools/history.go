package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/history"
)

// HistoryTool handles the sdd_history MCP tool.
// It lists past upgrade attempts from the SQLite history log.
type HistoryTool struct {
	store *history.Store
}

// NewHistoryTool creates a HistoryTool with the given history store.
func NewHistoryTool(store *history.Store) *HistoryTool {
	return &HistoryTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_history",
		mcp.WithDescription(
			"List past template upgrade attempts: which versions were tried, whether "+
				"they committed or rolled back, how many files landed, and why failures "+
				"happened. Newest first.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum attempts to return (default 20)"),
		),
	)
}

// Handle processes the sdd_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	attempts, err := t.store.List(intArg(req, "limit", 20))
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	if len(attempts) == 0 {
		return mcp.NewToolResultText("No upgrade attempts recorded yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Upgrade History (%d)\n\n", len(attempts))
	for _, a := range attempts {
		marker := "✅"
		if a.Outcome == history.OutcomeRolledBack {
			marker = "↩️"
		}
		fmt.Fprintf(&b, "- %s **%s** — %s", marker, a.TargetVersion, a.Outcome)
		if a.FilesCommitted > 0 {
			fmt.Fprintf(&b, ", %d file(s)", a.FilesCommitted)
		}
		if a.Reason != "" {
			fmt.Fprintf(&b, " (%s)", a.Reason)
		}
		fmt.Fprintf(&b, " at %s\n", a.RecordedAt)
	}

	return mcp.NewToolResultText(b.String()), nil
}
