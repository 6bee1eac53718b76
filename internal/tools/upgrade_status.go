package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/install"
	"github.com/specwright/specwright/internal/staging"
	"github.com/specwright/specwright/internal/upstream"
)

// UpgradeStatusTool handles the sdd_upgrade_status MCP tool.
// It reads the pipeline state from disk, so it reports correctly even
// after a crash and restart.
type UpgradeStatusTool struct{}

// NewUpgradeStatusTool creates an UpgradeStatusTool.
func NewUpgradeStatusTool() *UpgradeStatusTool {
	return &UpgradeStatusTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_upgrade_status",
		mcp.WithDescription(
			"Show the state of the template upgrade pipeline: the installed template "+
				"version, whether an upgrade is in flight, which rewrites have completed, "+
				"and what to do next. Optionally checks the template repository for a "+
				"newer release.",
		),
		mcp.WithBoolean("check_upstream",
			mcp.Description("Also query the template repository for its latest release (default false)"),
		),
	)
}

// Handle processes the sdd_upgrade_status tool call.
func (t *UpgradeStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layout, err := findLayout()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := install.LoadConfig(layout)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Upgrade Status\n\n")
	fmt.Fprintf(&b, "**Template repository:** %s\n", cfg.TemplateRepo)
	fmt.Fprintf(&b, "**Installed version:** %s\n", cfg.TemplateVersion)

	if boolArg(req, "check_upstream", false) {
		check := upstream.CheckTemplates(cfg.TemplateRepo, cfg.TemplateVersion)
		if check.UpdateAvailable {
			fmt.Fprintf(&b, "**Latest release:** %s — update available (%s)\n", check.LatestVersion, check.ReleaseURL)
		} else {
			b.WriteString("**Latest release:** no newer release found\n")
		}
	}

	sctx, err := staging.Open(layout)
	if err != nil {
		return nil, fmt.Errorf("opening staging tree: %w", err)
	}
	if sctx == nil {
		b.WriteString("\nNo upgrade is in flight. Start one with `sdd_upgrade_start`.")
		return mcp.NewToolResultText(b.String()), nil
	}

	fmt.Fprintf(&b, "\n## In-Flight Upgrade\n\n")
	fmt.Fprintf(&b, "**Target version:** %s\n", sctx.TargetVersion)
	fmt.Fprintf(&b, "**Status:** %s\n", sctx.Metadata.Status)
	fmt.Fprintf(&b, "**Started:** %s\n", sctx.Metadata.CreatedAt)
	fmt.Fprintf(&b, "**Baseline:** %d production file(s)\n\n", len(sctx.Metadata.Baseline))

	writeAgentLine(&b, "Scripts rewrite", sctx.Metadata.ScriptsAgent)
	writeAgentLine(&b, "Document rewrite", sctx.Metadata.DocsAgent)

	b.WriteString("\n## Next Step\n\n")
	switch sctx.Metadata.Status {
	case staging.StatusStaging:
		b.WriteString("Rewrite the scripts into the staging tree, then call `sdd_upgrade_scripts_done`.")
	case staging.StatusScriptsComplete:
		b.WriteString("Rewrite the command/agent/skill documents, then call `sdd_upgrade_docs_done`.")
	case staging.StatusReady:
		b.WriteString("Both rewrites succeeded. Call `sdd_upgrade_commit` to promote to production.")
	default:
		fmt.Fprintf(&b, "Pipeline is in status %q — roll back with `sdd_upgrade_rollback` if stuck.", sctx.Metadata.Status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

// writeAgentLine renders one agent's recorded outcome, or a pending marker.
func writeAgentLine(b *strings.Builder, label string, result *staging.AgentResult) {
	if result == nil {
		fmt.Fprintf(b, "- ⬜ %s: pending\n", label)
		return
	}
	if result.Success {
		fmt.Fprintf(b, "- ✅ %s: %d file(s) staged in %dms\n", label, len(result.FilesWritten), result.DurationMS)
		return
	}
	fmt.Fprintf(b, "- ❌ %s: %s\n", label, result.Error)
}
