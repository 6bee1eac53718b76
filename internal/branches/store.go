package branches

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/specwright/specwright/internal/install"
)

// Store defines the persistence interface for branch records.
// Abstracted for testability (DIP).
type Store interface {
	Create(layout install.Layout, record *Record) error
	Load(layout install.Layout, slug string) (*Record, error)
	Save(layout install.Layout, record *Record) error
	List(layout install.Layout) ([]Record, error)
	ListOpen(layout install.Layout) ([]Record, error)
}

// FileStore implements Store using the local filesystem.
type FileStore struct{}

// NewFileStore creates a filesystem-backed branch store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// RecordPath returns the absolute path to a branch record's JSON file.
func RecordPath(layout install.Layout, slug string) string {
	return filepath.Join(layout.BranchesPath(), slug+".json")
}

// Create persists a new branch record. If the slug already exists,
// appends a numeric suffix (-2, -3, etc.).
func (fs *FileStore) Create(layout install.Layout, record *Record) error {
	if err := os.MkdirAll(layout.BranchesPath(), 0o755); err != nil {
		return fmt.Errorf("creating branches directory: %w", err)
	}

	// Handle slug collisions.
	originalSlug := record.Slug
	path := RecordPath(layout, record.Slug)
	suffix := 2
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		record.Slug = fmt.Sprintf("%s-%d", originalSlug, suffix)
		path = RecordPath(layout, record.Slug)
		suffix++
	}

	return fs.write(layout, record)
}

// Load reads a branch record by slug.
func (fs *FileStore) Load(layout install.Layout, slug string) (*Record, error) {
	data, err := os.ReadFile(RecordPath(layout, slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("branch record %q not found", slug)
		}
		return nil, fmt.Errorf("reading branch record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing branch record %q: %w", slug, err)
	}
	return &record, nil
}

// Save updates an existing branch record, refreshing its timestamp.
func (fs *FileStore) Save(layout install.Layout, record *Record) error {
	record.UpdatedAt = timeNow().UTC().Format(time.RFC3339)
	return fs.write(layout, record)
}

// List returns every branch record, skipping unreadable entries.
func (fs *FileStore) List(layout install.Layout) ([]Record, error) {
	entries, err := os.ReadDir(layout.BranchesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading branches directory: %w", err)
	}

	var result []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := fs.Load(layout, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // skip unreadable records
		}
		result = append(result, *record)
	}
	return result, nil
}

// ListOpen returns only the records with status "open".
func (fs *FileStore) ListOpen(layout install.Layout) ([]Record, error) {
	all, err := fs.List(layout)
	if err != nil {
		return nil, err
	}
	var open []Record
	for _, r := range all {
		if r.Status == StatusOpen {
			open = append(open, r)
		}
	}
	return open, nil
}

// write marshals and writes a branch record to its JSON file.
func (fs *FileStore) write(layout install.Layout, record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling branch record: %w", err)
	}

	path := RecordPath(layout, record.Slug)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating branches directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
