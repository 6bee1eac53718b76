// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here — only wiring.
package server

import (
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/specwright/specwright/internal/branches"
	"github.com/specwright/specwright/internal/history"
	"github.com/specwright/specwright/internal/prompts"
	"github.com/specwright/specwright/internal/resources"
	"github.com/specwright/specwright/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the history store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if history init failed.
func New() (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	branchStore := branches.NewFileStore()

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"specwright",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- History subsystem ---
	//
	// History is independent: if the SQLite store fails to initialize,
	// upgrades still work — attempts just go unrecorded. We log a warning,
	// pass a nil store to the tools that tolerate it, and skip sdd_history.

	cleanup := noop
	histStore, histErr := history.New(history.DefaultConfig())
	if histErr != nil {
		log.Printf("WARNING: history subsystem disabled: %v", histErr)
		histStore = nil
	} else {
		cleanup = func() {
			if err := histStore.Close(); err != nil {
				log.Printf("WARNING: history store close: %v", err)
			}
		}
	}

	// --- Register upgrade pipeline tools ---

	startTool := tools.NewUpgradeStartTool()
	s.AddTool(startTool.Definition(), startTool.Handle)

	scriptsTool := tools.NewUpgradeScriptsDoneTool()
	s.AddTool(scriptsTool.Definition(), scriptsTool.Handle)

	docsTool := tools.NewUpgradeDocsDoneTool()
	s.AddTool(docsTool.Definition(), docsTool.Handle)

	commitTool := tools.NewUpgradeCommitTool(histStore)
	s.AddTool(commitTool.Definition(), commitTool.Handle)

	rollbackTool := tools.NewUpgradeRollbackTool(histStore)
	s.AddTool(rollbackTool.Definition(), rollbackTool.Handle)

	statusTool := tools.NewUpgradeStatusTool()
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	if histStore != nil {
		historyTool := tools.NewHistoryTool(histStore)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register branch and worktree tools ---

	branchTool := tools.NewBranchTool(branchStore)
	s.AddTool(branchTool.Definition(), branchTool.Handle)

	branchStatusTool := tools.NewBranchStatusTool(branchStore)
	s.AddTool(branchStatusTool.Definition(), branchStatusTool.Handle)

	worktreeTool := tools.NewWorktreeTool(branchStore)
	s.AddTool(worktreeTool.Definition(), worktreeTool.Handle)

	// --- Register multi-repo tool ---

	reposTool := tools.NewReposTool()
	s.AddTool(reposTool.Definition(), reposTool.Handle)

	// --- Register prompts ---

	upgradePrompt := prompts.NewUpgradePrompt()
	s.AddPrompt(upgradePrompt.Definition(), upgradePrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler()
	s.AddResource(resourceHandler.UpgradeResource(), resourceHandler.HandleUpgrade)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when history
// is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use specwright effectively.
func serverInstructions() string {
	return `You have access to specwright, an MCP server that manages a
spec-driven-development installation (the .specwright/ directory) in the
user's project: its scripts, command documents, agent definitions, and
skill documents.

## STAGED TEMPLATE UPGRADES

The core workflow is the staged upgrade. When the upstream template
repository publishes a new release, the installation's scripts and
documents must be rewritten for it. YOU perform the rewrites; specwright
guarantees they land atomically or not at all.

The pipeline:
1. sdd_upgrade_start — opens a staging tree and snapshots production
   modification times. It returns one staging output directory per
   production area.
2. Rewrite the imperative scripts for the new version. Write results ONLY
   into the staging scripts directory. Report with sdd_upgrade_scripts_done.
3. Rewrite the command/agent/skill documents the same way. Report with
   sdd_upgrade_docs_done. Documents may reference the staged scripts,
   which is why this step is strictly second.
4. sdd_upgrade_commit — moves every staged file into production and
   deletes the staging tree.

Rules you MUST follow:
- NEVER write rewrite output directly into .specwright/scripts,
  commands, agents, or skills while an upgrade is in flight. Staging
  directories only.
- Report failures honestly with success=false and an error message. The
  staging tree is rolled back automatically and production stays safe.
- If sdd_upgrade_commit reports conflicts (the user edited production
  files mid-upgrade), show every conflicting file to the user and ask
  before forcing.
- If a previous session died mid-upgrade, sdd_upgrade_status shows where
  it stopped — resume from that step, do not start over blindly.
- Writing zero files in a rewrite step is a valid success.

Use sdd_upgrade_status (optionally with check_upstream=true) to see the
installed version, whether a newer release exists, and the in-flight
state. Use sdd_upgrade_rollback with a reason to abandon an attempt.
Use sdd_history to review past attempts.

## SPEC BRANCHES

When the user starts working on a spec, offer to open a branch record:
- sdd_branch creates a spec/<slug> git branch, persists a record, and can
  provision a worktree and open a PR.
- sdd_branch_status lists open records, refreshes PR state from GitHub,
  and moves records to merged/abandoned.
- sdd_worktree manages the dedicated checkout directories, so spec work
  never disturbs the user's main checkout.

## MULTI-REPO SPEC SHARING

Teams can share one canonical commands area across repositories.
sdd_repos with action=link points this installation's commands area at a
shared directory; action=status shows the link state and registry. Never
suggest linking when the local commands area has content the user has
not moved into the shared repository — the tool refuses, explain why.`
}
