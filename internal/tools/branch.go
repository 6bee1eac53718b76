package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/branches"
	"github.com/specwright/specwright/internal/gitcmd"
	"github.com/specwright/specwright/internal/worktree"
)

// BranchTool handles the sdd_branch MCP tool.
// It opens a branch record for a spec: creates the git branch, optionally
// a worktree and a pull request, and persists the bookkeeping entry.
type BranchTool struct {
	store branches.Store
}

// NewBranchTool creates a BranchTool with the given branch store.
func NewBranchTool(store branches.Store) *BranchTool {
	return &BranchTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *BranchTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_branch",
		mcp.WithDescription(
			"Start branch bookkeeping for a spec. Creates a git branch named "+
				"spec/<slug> off the base branch, persists a branch record, and can "+
				"optionally provision a dedicated worktree and open a draft pull request. "+
				"The slug is derived from the description.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the spec is about. Used to generate the slug. "+
				"Example: 'Add rate limiting to API' → branch 'spec/add-rate-limiting-to-api'"),
		),
		mcp.WithString("base_branch",
			mcp.Description("Branch to fork from (default: the repository's default branch)"),
		),
		mcp.WithBoolean("worktree",
			mcp.Description("Also provision a sibling worktree for the branch (default false)"),
		),
		mcp.WithBoolean("create_pr",
			mcp.Description("Also open a pull request via gh (default false)"),
		),
	)
}

// Handle processes the sdd_branch tool call.
func (t *BranchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if strings.TrimSpace(description) == "" {
		return mcp.NewToolResultError("'description' is required — briefly describe the spec"), nil
	}

	layout, err := findLayout()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	repoRoot, err := gitcmd.RepoRoot(layout.ProjectRoot())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	base := req.GetString("base_branch", "")
	if base == "" {
		base, err = gitcmd.DefaultBranch(repoRoot)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	slug := branches.Slugify(description)
	branch := "spec/" + slug

	if gitcmd.BranchExists(repoRoot, branch) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Branch %q already exists. Use sdd_branch_status to inspect it, or pick a different description.",
			branch,
		)), nil
	}
	if err := gitcmd.CreateBranch(repoRoot, branch, base); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	record := &branches.Record{
		Slug:        slug,
		Branch:      branch,
		BaseBranch:  base,
		Description: description,
		Status:      branches.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var worktreePath string
	if boolArg(req, "worktree", false) {
		worktreePath, err = worktree.Provision(repoRoot, branch, base)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("branch created, but worktree failed: %v", err)), nil
		}
		record.Worktree = worktreePath
	}

	var prURL string
	if boolArg(req, "create_pr", false) {
		prURL, err = gitcmd.PRCreate(repoRoot, branch, base, description, "Spec branch opened by specwright.")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("branch created, but PR creation failed: %v", err)), nil
		}
		record.PRURL = prURL
		if info, err := gitcmd.PRView(repoRoot, branch); err == nil && info != nil {
			record.PRNumber = info.Number
		}
	}

	if err := t.store.Create(layout, record); err != nil {
		return nil, fmt.Errorf("persisting branch record: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Spec Branch Opened\n\n")
	fmt.Fprintf(&b, "**Slug:** `%s`\n", record.Slug)
	fmt.Fprintf(&b, "**Branch:** `%s` (off `%s`)\n", record.Branch, record.BaseBranch)
	fmt.Fprintf(&b, "**Description:** %s\n", record.Description)
	if worktreePath != "" {
		fmt.Fprintf(&b, "**Worktree:** `%s`\n", worktreePath)
	}
	if prURL != "" {
		fmt.Fprintf(&b, "**Pull request:** %s\n", prURL)
	}
	b.WriteString("\nTrack it with `sdd_branch_status`; mark it merged or abandoned there when done.")

	return mcp.NewToolResultText(b.String()), nil
}
