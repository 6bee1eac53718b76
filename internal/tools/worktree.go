package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/branches"
	"github.com/specwright/specwright/internal/gitcmd"
	"github.com/specwright/specwright/internal/worktree"
)

// WorktreeTool handles the sdd_worktree MCP tool.
// It manages the dedicated checkout directories spec branches work in.
type WorktreeTool struct {
	store branches.Store
}

// NewWorktreeTool creates a WorktreeTool with the given branch store.
func NewWorktreeTool(store branches.Store) *WorktreeTool {
	return &WorktreeTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *WorktreeTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_worktree",
		mcp.WithDescription(
			"Manage git worktrees for spec branches. 'add' provisions a sibling "+
				"checkout directory for a branch record's branch, 'remove' detaches it, "+
				"'list' shows every worktree registered for the repository. Worktrees let "+
				"work on a spec proceed without disturbing the main checkout.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("What to do"),
			mcp.Enum("add", "remove", "list"),
		),
		mcp.WithString("slug",
			mcp.Description("Branch record the worktree belongs to (required for add and remove)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("For remove: discard uncommitted changes in the worktree (default false)"),
		),
	)
}

// Handle processes the sdd_worktree tool call.
func (t *WorktreeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layout, err := findLayout()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repoRoot, err := gitcmd.RepoRoot(layout.ProjectRoot())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	action := req.GetString("action", "")
	if action == "list" {
		paths, err := worktree.List(repoRoot)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "# Worktrees (%d)\n\n", len(paths))
		b.WriteString(bullets(paths))
		return mcp.NewToolResultText(b.String()), nil
	}

	slug := req.GetString("slug", "")
	if slug == "" {
		return mcp.NewToolResultError("'slug' is required for add and remove"), nil
	}
	record, err := t.store.Load(layout, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch action {
	case "add":
		if record.Worktree != "" {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Record %q already has a worktree at %s — remove it first.", slug, record.Worktree,
			)), nil
		}
		path, err := worktree.Provision(repoRoot, record.Branch, record.BaseBranch)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		record.Worktree = path
		if err := t.store.Save(layout, record); err != nil {
			return nil, fmt.Errorf("saving branch record: %w", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Worktree for `%s` provisioned at `%s`. Work on the spec there.", record.Branch, path,
		)), nil

	case "remove":
		if record.Worktree == "" {
			return mcp.NewToolResultError(fmt.Sprintf("Record %q has no worktree.", slug)), nil
		}
		if err := worktree.Remove(repoRoot, record.Worktree, boolArg(req, "force", false)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		removed := record.Worktree
		record.Worktree = ""
		if err := t.store.Save(layout, record); err != nil {
			return nil, fmt.Errorf("saving branch record: %w", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Worktree at `%s` removed.", removed)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: must be add, remove, or list", action)), nil
	}
}
