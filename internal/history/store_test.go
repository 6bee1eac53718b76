package history

import (
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return s
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)

	id, err := s.Record("v2.1.0", OutcomeCommitted, 12, "", 3*time.Second)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if id == "" {
		t.Fatal("Record should return a generated ID")
	}

	if _, err := s.Record("v2.2.0", OutcomeRolledBack, 0, "docs agent failed: conflict in plan.md", time.Second); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	attempts, err := s.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("List returned %d attempts, want 2", len(attempts))
	}

	byVersion := map[string]Attempt{}
	for _, a := range attempts {
		byVersion[a.TargetVersion] = a
	}
	committed := byVersion["v2.1.0"]
	if committed.Outcome != OutcomeCommitted {
		t.Errorf("outcome = %s, want committed", committed.Outcome)
	}
	if committed.FilesCommitted != 12 {
		t.Errorf("files committed = %d, want 12", committed.FilesCommitted)
	}
	if committed.DurationMS != 3000 {
		t.Errorf("duration = %d ms, want 3000", committed.DurationMS)
	}
	rolledBack := byVersion["v2.2.0"]
	if rolledBack.Reason == "" {
		t.Error("rolled-back attempt should carry its reason")
	}
}

func TestList_HonorsLimit(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.Record("v1.0.0", OutcomeCommitted, 1, "", 0); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	attempts, err := s.List(3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(attempts) != 3 {
		t.Errorf("List returned %d attempts, want 3", len(attempts))
	}
}

func TestList_EmptyStore(t *testing.T) {
	s := testStore(t)

	attempts, err := s.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("List returned %d attempts, want 0", len(attempts))
	}
}
