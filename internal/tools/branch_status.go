package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/branches"
	"github.com/specwright/specwright/internal/gitcmd"
	"github.com/specwright/specwright/internal/install"
)

// BranchStatusTool handles the sdd_branch_status MCP tool.
// Without a slug it lists every open branch record; with one it shows a
// single record and can refresh its PR info or move it through its
// lifecycle.
type BranchStatusTool struct {
	store branches.Store
}

// NewBranchStatusTool creates a BranchStatusTool with the given store.
func NewBranchStatusTool(store branches.Store) *BranchStatusTool {
	return &BranchStatusTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *BranchStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_branch_status",
		mcp.WithDescription(
			"Inspect spec branch records. Without arguments, lists every open branch. "+
				"With a slug, shows that record in detail; optionally refreshes its pull "+
				"request state from GitHub or updates its lifecycle status.",
		),
		mcp.WithString("slug",
			mcp.Description("Branch record to inspect (omit to list all open records)"),
		),
		mcp.WithBoolean("refresh_pr",
			mcp.Description("Query gh for the branch's current PR state and update the record (default false)"),
		),
		mcp.WithString("set_status",
			mcp.Description("Move the record to a new lifecycle status"),
			mcp.Enum("open", "merged", "abandoned"),
		),
	)
}

// Handle processes the sdd_branch_status tool call.
func (t *BranchStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layout, err := findLayout()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slug := req.GetString("slug", "")
	if slug == "" {
		return t.listOpen(layout)
	}

	record, err := t.store.Load(layout, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	changed := false

	if boolArg(req, "refresh_pr", false) {
		repoRoot, err := gitcmd.RepoRoot(layout.ProjectRoot())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		info, err := gitcmd.PRView(repoRoot, record.Branch)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("refreshing PR state: %v", err)), nil
		}
		if info != nil {
			record.PRNumber = info.Number
			record.PRURL = info.URL
			if info.State == "merged" {
				record.Status = branches.StatusMerged
			}
			changed = true
		}
	}

	if s := req.GetString("set_status", ""); s != "" {
		status := branches.BranchStatus(s)
		if err := branches.ValidateStatus(status); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		record.Status = status
		changed = true
	}

	if changed {
		if err := t.store.Save(layout, record); err != nil {
			return nil, fmt.Errorf("saving branch record: %w", err)
		}
	}

	var b strings.Builder
	b.WriteString("# Branch Record\n\n")
	fmt.Fprintf(&b, "**Slug:** `%s`\n", record.Slug)
	fmt.Fprintf(&b, "**Branch:** `%s` (off `%s`)\n", record.Branch, record.BaseBranch)
	fmt.Fprintf(&b, "**Description:** %s\n", record.Description)
	fmt.Fprintf(&b, "**Status:** %s\n", record.Status)
	if record.PRNumber > 0 {
		fmt.Fprintf(&b, "**Pull request:** #%d — %s\n", record.PRNumber, record.PRURL)
	}
	if record.Worktree != "" {
		fmt.Fprintf(&b, "**Worktree:** `%s`\n", record.Worktree)
	}
	fmt.Fprintf(&b, "**Updated:** %s\n", record.UpdatedAt)

	return mcp.NewToolResultText(b.String()), nil
}

// listOpen renders every open branch record.
func (t *BranchStatusTool) listOpen(layout install.Layout) (*mcp.CallToolResult, error) {
	open, err := t.store.ListOpen(layout)
	if err != nil {
		return nil, fmt.Errorf("listing branch records: %w", err)
	}
	if len(open) == 0 {
		return mcp.NewToolResultText("No open spec branches. Start one with `sdd_branch`."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Open Spec Branches (%d)\n\n", len(open))
	for _, r := range open {
		fmt.Fprintf(&b, "- `%s` — %s (branch `%s`", r.Slug, r.Description, r.Branch)
		if r.PRNumber > 0 {
			fmt.Fprintf(&b, ", PR #%d", r.PRNumber)
		}
		b.WriteString(")\n")
	}
	b.WriteString("\nInspect one with `sdd_branch_status` and its slug.")

	return mcp.NewToolResultText(b.String()), nil
}
