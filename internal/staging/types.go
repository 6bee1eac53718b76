// Package staging implements the staged transformation pipeline used
// during template upgrades.
//
// Two rewrite agents (one for imperative scripts, one for command and
// workflow documents) write candidate files into an isolated staging tree.
// Their output lands in production atomically: either every staged file is
// promoted, or none is. The pipeline survives crashes — its state lives in
// a staging.json inside the staging tree, so a restarted process can pick
// up exactly where the dead one stopped — and it detects out-of-band edits
// to production files made while staging was in flight.
//
// This package follows the same design principles as the branch store:
// - SRP: types, baseline, recording, conflicts, commit, and rollback in separate files
// - DIP: Agent is an interface; the pipeline never inspects how files were produced
// - The on-disk metadata is the sole source of truth across process restarts
package staging

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// --- Pipeline status enum ---

// Status tracks the pipeline state machine. It only moves forward:
//
//	staging → scripts-complete → docs-complete → ready → committed
//
// except that StatusRolledBack is a terminal state reachable from any
// non-terminal status.
type Status string

const (
	// StatusStaging means the staging tree exists and agents may write.
	StatusStaging Status = "staging"
	// StatusScriptsComplete means the scripts agent succeeded.
	StatusScriptsComplete Status = "scripts-complete"
	// StatusDocsComplete means the docs agent succeeded.
	StatusDocsComplete Status = "docs-complete"
	// StatusReady means both agents succeeded and the tree can be committed.
	StatusReady Status = "ready"
	// StatusCommitted means every staged file was promoted to production.
	StatusCommitted Status = "committed"
	// StatusRolledBack means the staging tree was discarded.
	StatusRolledBack Status = "rolled-back"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCommitted || s == StatusRolledBack
}

// --- Agent abstraction ---

// AgentResult is what an agent reports after writing (or failing to write)
// its staged files. Each result is recorded exactly once and never mutated.
type AgentResult struct {
	Success      bool     `json:"success"`
	FilesWritten []string `json:"files_written"`
	Error        string   `json:"error,omitempty"`
	DurationMS   int64    `json:"duration_ms"`
}

// Agent produces staged files in an output directory and self-reports the
// outcome. The pipeline treats agents as black boxes: it never inspects how
// the files were generated, only the reported result.
type Agent interface {
	Run(outputDir string) AgentResult
}

// --- Persisted metadata ---

// Metadata is the persisted pipeline record, written as staging.json inside
// the staging tree. It survives process death; on restart, Open reads it
// back and the state machine resumes from exactly where it stopped.
type Metadata struct {
	TargetVersion string               `json:"target_version"`
	Status        Status               `json:"status"`
	ScriptsAgent  *AgentResult         `json:"scripts_agent,omitempty"`
	DocsAgent     *AgentResult         `json:"docs_agent,omitempty"`
	Baseline      map[string]time.Time `json:"baseline"`
	CreatedAt     string               `json:"created_at"`
	UpdatedAt     string               `json:"updated_at"`
}

// Context is the root handle for one transformation attempt. It is created
// by InitializeStaging, threaded through each subsequent call, and ceases
// to be meaningful the moment its backing directory is deleted by commit
// or rollback.
type Context struct {
	// RootDir is the absolute path to this attempt's staging tree.
	RootDir string
	// TargetVersion is the upstream template version being migrated to.
	TargetVersion string
	// Metadata is the persisted record, owned exclusively by this context
	// for the lifetime of the attempt.
	Metadata *Metadata

	// areas maps production area names to their production paths, captured
	// at initialization so commit and conflict checks use the same layout
	// the baseline was captured against.
	areas map[string]string
}

// OutputDirs are the directories agents must write into. Paths are inside
// the staging tree, one per production area.
type OutputDirs struct {
	ScriptsDir  string
	CommandsDir string
	AgentsDir   string
	SkillsDir   string
}

// --- Conflict records ---

// Conflict records one production file that changed out-of-band between
// baseline capture and commit. A zero CurrentMTime means the file was
// deleted; a zero BaselineMTime means it appeared after staging began.
type Conflict struct {
	Path          string    `json:"path"`
	BaselineMTime time.Time `json:"baseline_mtime"`
	CurrentMTime  time.Time `json:"current_mtime"`
}

// Describe renders a single human-readable line for the conflict.
func (c Conflict) Describe() string {
	switch {
	case c.CurrentMTime.IsZero():
		return fmt.Sprintf("%s: deleted since staging began (was modified %s)", c.Path, c.BaselineMTime.Format(time.RFC3339))
	case c.BaselineMTime.IsZero():
		return fmt.Sprintf("%s: created since staging began (modified %s)", c.Path, c.CurrentMTime.Format(time.RFC3339))
	default:
		return fmt.Sprintf("%s: modified since staging began (%s → %s)", c.Path, c.BaselineMTime.Format(time.RFC3339), c.CurrentMTime.Format(time.RFC3339))
	}
}

// --- Error taxonomy ---

// AlreadyStagingError means a staging tree already exists on disk. A second
// attempt must not start until the first is committed or rolled back.
type AlreadyStagingError struct {
	Version string
	RootDir string
}

func (e *AlreadyStagingError) Error() string {
	return fmt.Sprintf("a staging attempt for version %q is already in flight at %s — commit or roll it back first", e.Version, e.RootDir)
}

// AgentFailureError means an agent reported failure. The pipeline has
// already rolled the staging tree back by the time this error surfaces;
// the caller never needs to roll back itself.
type AgentFailureError struct {
	Agent string
	Cause string
}

func (e *AgentFailureError) Error() string {
	return fmt.Sprintf("%s agent failed: %s (staging rolled back, production untouched)", e.Agent, e.Cause)
}

// ConflictError blocks a commit because production changed since baseline
// capture. It carries every conflicting file, not just the first.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	lines := make([]string, 0, len(e.Conflicts)+1)
	lines = append(lines, fmt.Sprintf("%d file(s) changed since staging began:", len(e.Conflicts)))
	for _, c := range e.Conflicts {
		lines = append(lines, "  "+c.Describe())
	}
	return strings.Join(lines, "\n")
}

// AsConflictError unwraps err into a *ConflictError if it is one.
func AsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
