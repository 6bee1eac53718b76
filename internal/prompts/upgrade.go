// Package prompts implements MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// UpgradePrompt handles the sdd-upgrade MCP prompt.
// It walks the AI through the full staged upgrade workflow.
type UpgradePrompt struct{}

// NewUpgradePrompt creates an UpgradePrompt.
func NewUpgradePrompt() *UpgradePrompt {
	return &UpgradePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *UpgradePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("sdd-upgrade",
		mcp.WithPromptDescription(
			"Run a staged template upgrade end to end: stage the rewrite, "+
				"perform the scripts and document rewrites, then commit "+
				"atomically. Production is never touched until the final commit.",
		),
		mcp.WithArgument("target_version",
			mcp.ArgumentDescription("Template version to upgrade to. Omit to use the latest release."),
		),
	)
}

// Handle processes the sdd-upgrade prompt request.
func (p *UpgradePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	version := "the latest release"
	versionArg := ""
	if args := req.Params.Arguments; args != nil {
		if v, ok := args["target_version"]; ok && v != "" {
			version = v
			versionArg = fmt.Sprintf(" with target_version='%s'", v)
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Upgrade templates to %s", version),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to upgrade my installation's templates to %s.\n\n"+
						"Please:\n"+
						"1. Run `sdd_upgrade_start`%s. It will give you staging output directories.\n"+
						"2. Rewrite every script that the new template version changes, writing the "+
						"results ONLY into the staging scripts directory — never into production. "+
						"Then call `sdd_upgrade_scripts_done` with success=true and the file list "+
						"(or success=false and the error if something went wrong).\n"+
						"3. Rewrite the command, agent, and skill documents the same way into their "+
						"staging directories, then call `sdd_upgrade_docs_done`.\n"+
						"4. Call `sdd_upgrade_commit` to promote everything atomically. If it reports "+
						"conflicts, show them to me and ask whether to force, roll back, or wait.\n"+
						"5. Summarize what changed.\n\n"+
						"If anything fails along the way, the staging tree is rolled back "+
						"automatically and my production files stay untouched — tell me what "+
						"happened and stop.",
					version, versionArg,
				)),
			},
		},
	}, nil
}
