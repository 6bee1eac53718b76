// Package install locates and describes a specwright installation.
//
// An installation is a .specwright/ directory at the root of a project
// (or a shared spec repository). Everything specwright manages lives under
// it: the four production areas the AI assistant reads at runtime
// (scripts/, commands/, agents/, skills/), branch records, the linked-repo
// registry, and the staging root used during template upgrades.
package install

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// RootDirName is the directory that marks a specwright installation.
	RootDirName = ".specwright"

	// ScriptsDir holds imperative helper scripts invoked by commands.
	ScriptsDir = "scripts"
	// CommandsDir holds command documents (slash-command definitions).
	CommandsDir = "commands"
	// AgentsDir holds agent definition documents.
	AgentsDir = "agents"
	// SkillsDir holds skill documents.
	SkillsDir = "skills"

	// StagingDir is the scratch root for in-flight template upgrades.
	StagingDir = "staging"
	// BranchesDir holds branch/PR bookkeeping records.
	BranchesDir = "branches"
	// ConfigFile is the installation configuration filename.
	ConfigFile = "config.yaml"
	// ReposFile is the linked-repository registry filename.
	ReposFile = "repos.json"
)

// Layout describes one installation. Root is the absolute path to the
// .specwright/ directory itself.
type Layout struct {
	Root string
}

// NewLayout creates a Layout rooted at the given .specwright/ directory.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// Find walks up from startDir looking for a .specwright/ directory.
// Returns an error if none is found before the filesystem root.
func Find(startDir string) (Layout, error) {
	current := startDir
	for {
		candidate := filepath.Join(current, RootDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return Layout{Root: candidate}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Layout{}, fmt.Errorf("no %s directory found above %s — run from inside a specwright project", RootDirName, startDir)
		}
		current = parent
	}
}

// FindFromCwd locates the installation starting at the working directory.
func FindFromCwd() (Layout, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Layout{}, fmt.Errorf("getting working directory: %w", err)
	}
	return Find(cwd)
}

// ProjectRoot returns the directory containing .specwright/.
func (l Layout) ProjectRoot() string {
	return filepath.Dir(l.Root)
}

// ScriptsPath returns the absolute path to the scripts production area.
func (l Layout) ScriptsPath() string {
	return filepath.Join(l.Root, ScriptsDir)
}

// CommandsPath returns the absolute path to the commands production area.
func (l Layout) CommandsPath() string {
	return filepath.Join(l.Root, CommandsDir)
}

// AgentsPath returns the absolute path to the agents production area.
func (l Layout) AgentsPath() string {
	return filepath.Join(l.Root, AgentsDir)
}

// SkillsPath returns the absolute path to the skills production area.
func (l Layout) SkillsPath() string {
	return filepath.Join(l.Root, SkillsDir)
}

// ProductionAreas returns the four managed areas in a fixed order:
// area name → absolute production path. The order matters for stable
// baseline capture and commit reporting.
func (l Layout) ProductionAreas() []Area {
	return []Area{
		{Name: ScriptsDir, Path: l.ScriptsPath()},
		{Name: CommandsDir, Path: l.CommandsPath()},
		{Name: AgentsDir, Path: l.AgentsPath()},
		{Name: SkillsDir, Path: l.SkillsPath()},
	}
}

// Area is one managed production area.
type Area struct {
	Name string
	Path string
}

// StagingRoot returns the directory under which versioned staging trees live.
func (l Layout) StagingRoot() string {
	return filepath.Join(l.Root, StagingDir)
}

// BranchesPath returns the directory holding branch records.
func (l Layout) BranchesPath() string {
	return filepath.Join(l.Root, BranchesDir)
}

// ConfigPath returns the absolute path to config.yaml.
func (l Layout) ConfigPath() string {
	return filepath.Join(l.Root, ConfigFile)
}

// ReposPath returns the absolute path to the linked-repo registry.
func (l Layout) ReposPath() string {
	return filepath.Join(l.Root, ReposFile)
}
