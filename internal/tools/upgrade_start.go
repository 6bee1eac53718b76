package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/install"
	"github.com/specwright/specwright/internal/staging"
	"github.com/specwright/specwright/internal/upstream"
)

// UpgradeStartTool handles the sdd_upgrade_start MCP tool.
// It opens a staging tree for a template upgrade: the assistant then
// plays both rewrite agents, writing candidate files into the staging
// output directories and reporting back with sdd_upgrade_scripts_done
// and sdd_upgrade_docs_done.
type UpgradeStartTool struct{}

// NewUpgradeStartTool creates an UpgradeStartTool.
func NewUpgradeStartTool() *UpgradeStartTool {
	return &UpgradeStartTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeStartTool) Definition() mcp.Tool {
	return mcp.NewTool("sdd_upgrade_start",
		mcp.WithDescription(
			"Begin a staged template upgrade. Creates an isolated staging tree with one "+
				"output directory per production area (scripts, commands, agents, skills) and "+
				"snapshots every production file's modification time. Nothing in production is "+
				"touched until sdd_upgrade_commit. Only one upgrade can be in flight at a time. "+
				"After this call, rewrite the scripts first (report via sdd_upgrade_scripts_done), "+
				"then the docs (sdd_upgrade_docs_done), then commit.",
		),
		mcp.WithString("target_version",
			mcp.Description("Template version to upgrade to (e.g. '2.1.0'). "+
				"Omit to use the latest release of the configured template repository."),
		),
	)
}

// Handle processes the sdd_upgrade_start tool call.
func (t *UpgradeStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layout, err := findLayout()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := install.LoadConfig(layout)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	targetVersion := req.GetString("target_version", "")
	if targetVersion == "" {
		check := upstream.CheckTemplates(cfg.TemplateRepo, cfg.TemplateVersion)
		if !check.UpdateAvailable {
			return mcp.NewToolResultError(fmt.Sprintf(
				"No newer template release found for %s (installed: %s). "+
					"Pass 'target_version' explicitly to force a specific version.",
				cfg.TemplateRepo, cfg.TemplateVersion,
			)), nil
		}
		targetVersion = check.LatestVersion
	}

	sctx, err := staging.InitializeStaging(layout, targetVersion)
	if err != nil {
		var already *staging.AlreadyStagingError
		if errors.As(err, &already) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"An upgrade to version %q is already in flight (%s). "+
					"Finish it with sdd_upgrade_commit or discard it with sdd_upgrade_rollback first.",
				already.Version, already.RootDir,
			)), nil
		}
		return nil, fmt.Errorf("initializing staging: %w", err)
	}

	dirs := staging.GetOutputDirs(sctx)
	response := fmt.Sprintf(
		"# Upgrade Staged\n\n"+
			"**Target version:** %s\n"+
			"**Installed version:** %s\n"+
			"**Baseline:** %d production file(s) snapshotted\n\n"+
			"## Staging Output Directories\n\n"+
			"Write candidate files here — never into production directly:\n\n"+
			"- scripts: `%s`\n"+
			"- commands: `%s`\n"+
			"- agents: `%s`\n"+
			"- skills: `%s`\n\n"+
			"## Workflow\n\n"+
			"1. Rewrite the imperative scripts for version %s into the scripts directory, "+
			"then call `sdd_upgrade_scripts_done` with the outcome.\n"+
			"2. Rewrite the command/agent/skill documents into their directories, "+
			"then call `sdd_upgrade_docs_done`.\n"+
			"3. Call `sdd_upgrade_commit` to promote everything to production atomically.\n\n"+
			"Reporting failure at any step rolls the staging tree back automatically; "+
			"production is never touched until commit.",
		targetVersion, cfg.TemplateVersion, len(sctx.Metadata.Baseline),
		dirs.ScriptsDir, dirs.CommandsDir, dirs.AgentsDir, dirs.SkillsDir,
		targetVersion,
	)

	return mcp.NewToolResultText(response), nil
}
