package block

import (
	"errors"
	"testing"
	"time"
)

func TestAppendFillsDefaults(t *testing.T) {
	r := NewRegistry(t.TempDir())

	rec, err := r.Append(Record{SessionID: "s1", Issue: "scope drift detected"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ID == "" {
		t.Error("Append did not assign an ID")
	}
	if rec.Timestamp.IsZero() {
		t.Error("Append did not assign a timestamp")
	}
}

func TestAppendRequiresSessionID(t *testing.T) {
	r := NewRegistry(t.TempDir())
	if _, err := r.Append(Record{Issue: "no session"}); !errors.Is(err, ErrSessionIDRequired) {
		t.Errorf("Append without session ID: err = %v, want ErrSessionIDRequired", err)
	}
}

func TestActiveFiltersClearedAndOtherSessions(t *testing.T) {
	r := NewRegistry(t.TempDir())

	b1, err := r.Append(Record{SessionID: "s1", Issue: "first"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Append(Record{SessionID: "s1", Issue: "second"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Append(Record{SessionID: "s2", Issue: "other session"}); err != nil {
		t.Fatal(err)
	}
	// Tombstone clearing the first block.
	if _, err := r.Append(Record{SessionID: "s1", Clears: b1.ID, ClearedBy: "operator"}); err != nil {
		t.Fatal(err)
	}

	active, err := r.Active("s1")
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 1 || active[0].Issue != "second" {
		t.Errorf("Active(s1) = %+v, want only the second block", active)
	}

	all, err := r.Active("")
	if err != nil {
		t.Fatalf("Active(all): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Active(\"\") returned %d records, want 2", len(all))
	}
}

func TestClearAppendsTombstones(t *testing.T) {
	r := NewRegistry(t.TempDir())
	now := time.Now()

	if _, err := r.Append(Record{SessionID: "s1", Issue: "first"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Append(Record{SessionID: "s1", Issue: "second"}); err != nil {
		t.Fatal(err)
	}

	cleared, err := r.Clear("s1", "operator", "resolved with user", now)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(cleared) != 2 {
		t.Errorf("Clear returned %d records, want 2", len(cleared))
	}

	active, err := r.Active("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("Active after clear = %+v, want empty", active)
	}

	// History is preserved: the log still holds blocks plus tombstones.
	all, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("List returned %d records, want 4 (2 blocks + 2 tombstones)", len(all))
	}
}

func TestClearWithoutActiveBlock(t *testing.T) {
	r := NewRegistry(t.TempDir())
	if _, err := r.Clear("s1", "operator", "nothing to clear", time.Now()); !errors.Is(err, ErrNoActiveBlock) {
		t.Errorf("Clear on clean session: err = %v, want ErrNoActiveBlock", err)
	}
}

func TestListMissingFile(t *testing.T) {
	r := NewRegistry(t.TempDir())
	recs, err := r.List()
	if err != nil {
		t.Fatalf("List on missing file: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("List = %v, want empty", recs)
	}
}
