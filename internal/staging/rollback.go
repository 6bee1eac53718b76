package staging

import (
	"fmt"
	"log"
	"os"
)

// Rollback discards the staging tree, leaving production untouched. It
// works from any status — a half-staged tree, a ready tree, even a tree
// whose metadata is unreadable — and it is idempotent: rolling back an
// already-deleted tree is a no-op success, so retries after partial
// cleanup failures are safe.
//
// The reason is required for the log line; every rollback is accompanied
// by a human-readable explanation.
func Rollback(ctx *Context, reason string) error {
	if reason == "" {
		reason = "no reason given"
	}

	if _, err := os.Stat(ctx.RootDir); os.IsNotExist(err) {
		// Already rolled back (or committed) — nothing to do.
		ctx.Metadata.Status = StatusRolledBack
		return nil
	}

	if err := os.RemoveAll(ctx.RootDir); err != nil {
		return fmt.Errorf("removing staging tree: %w", err)
	}

	log.Printf("staging rolled back (version %s): %s", ctx.TargetVersion, reason)
	ctx.Metadata.Status = StatusRolledBack
	return nil
}
