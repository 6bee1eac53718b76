// Package branches handles branch and pull-request bookkeeping for
// spec-driven workflows.
//
// Every spec worked on through specwright gets a branch record: which git
// branch carries the work, which PR (if any) tracks it, and where it is in
// its lifecycle. Records are plain JSON files under the installation's
// branches/ directory — direct, unconditional mutation, no transactional
// machinery (that belongs to the staging pipeline alone).
package branches

import (
	"fmt"
	"strings"
)

// --- Branch status enum ---

// BranchStatus tracks the lifecycle of a spec branch.
type BranchStatus string

const (
	StatusOpen      BranchStatus = "open"
	StatusMerged    BranchStatus = "merged"
	StatusAbandoned BranchStatus = "abandoned"
)

// validStatuses is the set of allowed branch statuses.
var validStatuses = map[BranchStatus]bool{
	StatusOpen:      true,
	StatusMerged:    true,
	StatusAbandoned: true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s BranchStatus) error {
	if !validStatuses[s] {
		return fmt.Errorf("invalid branch status %q: must be one of: open, merged, abandoned", s)
	}
	return nil
}

// --- Core data structure ---

// Record is the bookkeeping entry for one spec branch, persisted as
// <slug>.json under branches/.
type Record struct {
	Slug        string       `json:"slug"`
	Branch      string       `json:"branch"`
	BaseBranch  string       `json:"base_branch"`
	Description string       `json:"description"`
	PRNumber    int          `json:"pr_number,omitempty"`
	PRURL       string       `json:"pr_url,omitempty"`
	Worktree    string       `json:"worktree,omitempty"`
	Status      BranchStatus `json:"status"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

// --- Slug generation ---

const maxSlugLen = 50

// Slugify converts a description string into a branch/filesystem-safe slug.
// Example: "Add rate limiting to API" → "add-rate-limiting-to-api"
//
// Rules:
//   - Lowercase
//   - Spaces and underscores become hyphens
//   - Non-alphanumeric characters (except hyphens) are removed
//   - Consecutive hyphens are collapsed
//   - Leading/trailing hyphens are trimmed
//   - Truncated to 50 characters (at a word boundary if possible)
//   - Empty input returns "unnamed-spec"
func Slugify(description string) string {
	if strings.TrimSpace(description) == "" {
		return "unnamed-spec"
	}

	s := strings.ToLower(strings.TrimSpace(description))

	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '_' || r == '-':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")

	if slug == "" {
		return "unnamed-spec"
	}

	if len(slug) <= maxSlugLen {
		return slug
	}

	// Truncate at word boundary if possible.
	truncated := slug[:maxSlugLen]
	if lastHyphen := strings.LastIndex(truncated, "-"); lastHyphen > maxSlugLen/2 {
		truncated = truncated[:lastHyphen]
	}

	return strings.TrimRight(truncated, "-")
}
