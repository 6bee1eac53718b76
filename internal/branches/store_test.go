package branches

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specwright/specwright/internal/install"
)

// --- Helpers ---

func testLayout(t *testing.T) install.Layout {
	t.Helper()
	return install.NewLayout(filepath.Join(t.TempDir(), install.RootDirName))
}

func testRecord(slug, desc string) *Record {
	return &Record{
		Slug:        slug,
		Branch:      "spec/" + slug,
		BaseBranch:  "main",
		Description: desc,
		Status:      StatusOpen,
		CreatedAt:   "2026-01-01T00:00:00Z",
		UpdatedAt:   "2026-01-01T00:00:00Z",
	}
}

// --- Slugify ---

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Add rate limiting to API", "add-rate-limiting-to-api"},
		{"  Fix   login__crash  ", "fix-login-crash"},
		{"émoji & symbols!!", "moji-symbols"},
		{"", "unnamed-spec"},
		{"----", "unnamed-spec"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugify_TruncatesAtWordBoundary(t *testing.T) {
	long := "this is a very long spec description that keeps going and going and going"
	got := Slugify(long)
	if len(got) > 50 {
		t.Errorf("slug length = %d, want <= 50", len(got))
	}
	if got[len(got)-1] == '-' {
		t.Errorf("slug %q should not end with a hyphen", got)
	}
}

// --- Create / Load ---

func TestCreate_WritesRecordJSON(t *testing.T) {
	layout := testLayout(t)
	store := NewFileStore()
	record := testRecord("add-auth", "Add auth")

	if err := store.Create(layout, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	data, err := os.ReadFile(RecordPath(layout, "add-auth"))
	if err != nil {
		t.Fatalf("record file not written: %v", err)
	}
	var parsed Record
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if parsed.Branch != "spec/add-auth" {
		t.Errorf("Branch = %s, want spec/add-auth", parsed.Branch)
	}
}

func TestCreate_SlugCollisionAppendsNumericSuffix(t *testing.T) {
	layout := testLayout(t)
	store := NewFileStore()

	first := testRecord("add-auth", "Add auth")
	if err := store.Create(layout, first); err != nil {
		t.Fatalf("Create first failed: %v", err)
	}
	second := testRecord("add-auth", "Add auth again")
	if err := store.Create(layout, second); err != nil {
		t.Fatalf("Create second failed: %v", err)
	}
	if second.Slug != "add-auth-2" {
		t.Errorf("second slug = %s, want add-auth-2", second.Slug)
	}
}

func TestLoad_NotFoundReturnsError(t *testing.T) {
	layout := testLayout(t)
	store := NewFileStore()

	if _, err := store.Load(layout, "nonexistent"); err == nil {
		t.Fatal("Load should fail for a missing record")
	}
}

// --- Save ---

func TestSave_RefreshesTimestamp(t *testing.T) {
	layout := testLayout(t)
	store := NewFileStore()
	record := testRecord("my-spec", "My spec")

	if err := store.Create(layout, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	record.PRNumber = 42
	record.PRURL = "https://github.com/acme/app/pull/42"
	old := record.UpdatedAt
	if err := store.Save(layout, record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if record.UpdatedAt == old {
		t.Error("Save should refresh UpdatedAt")
	}

	loaded, err := store.Load(layout, "my-spec")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.PRNumber != 42 {
		t.Errorf("PRNumber = %d, want 42", loaded.PRNumber)
	}
}

// --- List / ListOpen ---

func TestList_SkipsCorruptAndStrayEntries(t *testing.T) {
	layout := testLayout(t)
	store := NewFileStore()

	if err := store.Create(layout, testRecord("valid-one", "Valid")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(layout.BranchesPath(), "corrupt.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(layout.BranchesPath(), "README.txt"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	list, err := store.List(layout)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Slug != "valid-one" {
		t.Errorf("List = %v, want only valid-one", list)
	}
}

func TestListOpen_FiltersByStatus(t *testing.T) {
	layout := testLayout(t)
	store := NewFileStore()

	open := testRecord("still-open", "Open spec")
	if err := store.Create(layout, open); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	merged := testRecord("already-merged", "Merged spec")
	merged.Status = StatusMerged
	if err := store.Create(layout, merged); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.ListOpen(layout)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "still-open" {
		t.Errorf("ListOpen = %v, want only still-open", got)
	}
}

func TestList_EmptyWhenNoRecords(t *testing.T) {
	layout := testLayout(t)
	store := NewFileStore()

	list, err := store.List(layout)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List returned %d records, want 0", len(list))
	}
}

// --- Status validation ---

func TestValidateStatus(t *testing.T) {
	for _, s := range []BranchStatus{StatusOpen, StatusMerged, StatusAbandoned} {
		if err := ValidateStatus(s); err != nil {
			t.Errorf("ValidateStatus(%s) = %v, want nil", s, err)
		}
	}
	if err := ValidateStatus("closed"); err == nil {
		t.Error("ValidateStatus should reject unknown statuses")
	}
}

// --- Store interface compliance ---

func TestFileStore_ImplementsStoreInterface(t *testing.T) {
	// Compile-time check — if this compiles, FileStore satisfies Store.
	var _ Store = (*FileStore)(nil)
}
