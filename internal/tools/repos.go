package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/multirepo"
)

// ReposTool handles the sdd_repos MCP tool.
// It manages spec sharing across repositories via the symlinked commands
// area and the linked-repo registry.
type ReposTool struct{}

// NewReposTool creates a ReposTool.
func NewReposTool() *ReposTool {
	return &ReposTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *ReposTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_repos",
		mcp.WithDescription(
			"Manage multi-repository spec sharing. 'link' points this installation's "+
				"commands area at a shared spec repository (via symlink) so every linked "+
				"project resolves the same command documents. 'status' shows whether this "+
				"installation is linked and lists the registry of known links.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("What to do"),
			mcp.Enum("link", "status"),
		),
		mcp.WithString("target",
			mcp.Description("For link: path to the shared spec repository's commands directory"),
		),
	)
}

// Handle processes the sdd_repos tool call.
func (t *ReposTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layout, err := findLayout()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch action := req.GetString("action", ""); action {
	case "link":
		target := req.GetString("target", "")
		if strings.TrimSpace(target) == "" {
			return mcp.NewToolResultError("'target' is required for link — the shared commands directory"), nil
		}
		if err := multirepo.Link(layout, target); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"# Repository Linked\n\nThe commands area now resolves through `%s`. "+
				"Command documents are shared with every repository linked to the same target.",
			target,
		)), nil

	case "status":
		info, err := multirepo.Detect(layout)
		if err != nil {
			return nil, fmt.Errorf("detecting link state: %w", err)
		}

		var b strings.Builder
		b.WriteString("# Multi-Repo Status\n\n")
		if info.Linked {
			fmt.Fprintf(&b, "**Linked:** yes — commands resolve through `%s`\n", info.Target)
		} else {
			b.WriteString("**Linked:** no — this installation owns its commands area\n")
		}

		reg, err := multirepo.LoadRegistry(layout)
		if err != nil {
			return nil, fmt.Errorf("loading registry: %w", err)
		}
		if len(reg.Links) > 0 {
			b.WriteString("\n## Link Registry\n\n")
			for _, e := range reg.Links {
				fmt.Fprintf(&b, "- `%s` (linked %s)\n", e.Target, e.LinkedAt)
			}
		}

		return mcp.NewToolResultText(b.String()), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: must be link or status", action)), nil
	}
}
