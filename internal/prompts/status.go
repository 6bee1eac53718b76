package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the sdd-status MCP prompt.
// It instructs the AI to read and present the installation state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("sdd-status",
		mcp.WithPromptDescription(
			"Check the state of this specwright installation: in-flight "+
				"upgrades, open spec branches, and whether a newer template "+
				"release is available.",
		),
	)
}

// Handle processes the sdd-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Installation Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `sdd_upgrade_status` with check_upstream=true and `sdd_branch_status`.\n\n" +
						"Then:\n" +
						"1. Show me the installation state in a clear, visual format\n" +
						"2. If an upgrade is in flight, tell me exactly what step comes next\n" +
						"3. If a newer template release exists, ask whether I want to upgrade\n" +
						"4. List my open spec branches and flag any that look stale",
				),
			},
		},
	}, nil
}
