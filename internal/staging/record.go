package staging

import "fmt"

// Agent display names used in error messages and recorded reasons.
const (
	scriptsAgentName = "scripts"
	docsAgentName    = "docs"
)

// RecordScriptsComplete records the scripts agent's outcome.
//
// On failure the staging tree is rolled back immediately and an
// AgentFailureError embedding the agent's own error is returned — the
// pipeline is dead and the caller must not continue with the context.
// On success the result is persisted exactly once and the state machine
// advances to scripts-complete.
//
// An agent that wrote zero files is still a success (a no-op run).
func RecordScriptsComplete(ctx *Context, result AgentResult) error {
	if ctx.Metadata.Status != StatusStaging {
		return fmt.Errorf("cannot record scripts result in status %q (expected %q)", ctx.Metadata.Status, StatusStaging)
	}
	if ctx.Metadata.ScriptsAgent != nil {
		return fmt.Errorf("scripts agent result already recorded")
	}

	if !result.Success {
		return failAgent(ctx, scriptsAgentName, result)
	}

	ctx.Metadata.ScriptsAgent = &result
	ctx.Metadata.Status = StatusScriptsComplete
	return ctx.save()
}

// RecordDocsComplete records the docs agent's outcome. The docs agent runs
// strictly after the scripts agent — its rewrites may depend on the scripts
// output directory existing.
//
// On success the state machine advances through docs-complete to ready,
// which is the precondition for commit.
func RecordDocsComplete(ctx *Context, result AgentResult) error {
	if ctx.Metadata.Status != StatusScriptsComplete {
		return fmt.Errorf("cannot record docs result in status %q (expected %q)", ctx.Metadata.Status, StatusScriptsComplete)
	}
	if ctx.Metadata.DocsAgent != nil {
		return fmt.Errorf("docs agent result already recorded")
	}

	if !result.Success {
		return failAgent(ctx, docsAgentName, result)
	}

	ctx.Metadata.DocsAgent = &result
	ctx.Metadata.Status = StatusDocsComplete
	if err := ctx.save(); err != nil {
		return err
	}

	// Both agents done — the tree is now committable.
	ctx.Metadata.Status = StatusReady
	return ctx.save()
}

// RunScriptsAgent invokes the agent against the scripts output directory
// and records its result.
func RunScriptsAgent(ctx *Context, agent Agent) error {
	return RecordScriptsComplete(ctx, agent.Run(GetOutputDirs(ctx).ScriptsDir))
}

// RunDocsAgent invokes the agent against the commands output directory
// and records its result.
func RunDocsAgent(ctx *Context, agent Agent) error {
	return RecordDocsComplete(ctx, agent.Run(GetOutputDirs(ctx).CommandsDir))
}

// failAgent handles a failed agent report: roll the staging tree back
// unconditionally, then surface the agent's error. Production has not been
// touched — agents only ever write inside the staging tree.
func failAgent(ctx *Context, agent string, result AgentResult) error {
	reason := result.Error
	if reason == "" {
		reason = "agent reported failure without an error message"
	}

	if err := Rollback(ctx, fmt.Sprintf("%s agent failed: %s", agent, reason)); err != nil {
		return fmt.Errorf("rolling back after %s agent failure (%s): %w", agent, reason, err)
	}

	return &AgentFailureError{Agent: agent, Cause: reason}
}
