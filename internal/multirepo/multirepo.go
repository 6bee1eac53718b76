// Package multirepo handles spec sharing across repositories.
//
// Teams keep one canonical spec repository and link other repositories to
// it: the linked repository's .specwright/ commands area is a symlink into
// the shared repo, so every project resolves the same command documents.
// Detection is symlink inspection; the registry of known links is a plain
// JSON file.
package multirepo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/specwright/specwright/internal/install"
)

// LinkInfo describes whether (and where) an installation is linked.
type LinkInfo struct {
	// Linked is true when the commands area is a symlink.
	Linked bool
	// Target is the resolved absolute path of the shared area, empty when
	// not linked.
	Target string
}

// Detect inspects the installation's commands area for a symlink into a
// shared spec repository. A missing commands area is not an error — it
// just means the installation is unlinked and empty.
func Detect(layout install.Layout) (LinkInfo, error) {
	path := layout.CommandsPath()

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LinkInfo{}, nil
		}
		return LinkInfo{}, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return LinkInfo{}, nil
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return LinkInfo{}, fmt.Errorf("resolving symlink %s: %w", path, err)
	}
	return LinkInfo{Linked: true, Target: target}, nil
}

// Link points the installation's commands area at a shared directory.
// An existing real (non-symlink) commands area is refused rather than
// silently replaced — the caller must move its content first.
func Link(layout install.Layout, target string) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving target: %w", err)
	}
	if info, err := os.Stat(absTarget); err != nil || !info.IsDir() {
		return fmt.Errorf("link target %s is not a directory", absTarget)
	}

	path := layout.CommandsPath()
	if info, err := os.Lstat(path); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			return fmt.Errorf("%s already exists and is not a symlink — move its content into the shared repo first", path)
		}
		// Re-linking: replace the old symlink.
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing old symlink: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating installation root: %w", err)
	}
	if err := os.Symlink(absTarget, path); err != nil {
		return fmt.Errorf("creating symlink: %w", err)
	}

	return register(layout, absTarget)
}

// --- Linked-repo registry ---

// Registry is the persisted list of shared repositories this installation
// has linked to, newest last.
type Registry struct {
	Links []RegistryEntry `json:"links"`
}

// RegistryEntry records one link.
type RegistryEntry struct {
	Target   string `json:"target"`
	LinkedAt string `json:"linked_at"`
}

// LoadRegistry reads repos.json; a missing file is an empty registry.
func LoadRegistry(layout install.Layout) (Registry, error) {
	data, err := os.ReadFile(layout.ReposPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Registry{}, nil
		}
		return Registry{}, fmt.Errorf("reading repos.json: %w", err)
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return Registry{}, fmt.Errorf("parsing repos.json: %w", err)
	}
	return reg, nil
}

// register appends a link to the registry, deduplicating by target.
func register(layout install.Layout, target string) error {
	reg, err := LoadRegistry(layout)
	if err != nil {
		return err
	}
	for _, e := range reg.Links {
		if e.Target == target {
			return nil
		}
	}
	reg.Links = append(reg.Links, RegistryEntry{
		Target:   target,
		LinkedAt: time.Now().UTC().Format(time.RFC3339),
	})

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling repos.json: %w", err)
	}
	return os.WriteFile(layout.ReposPath(), data, 0o644)
}
