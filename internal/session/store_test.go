package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nicsuzor/sessiongate/internal/gate"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), gate.DefaultRegistry())
}

func TestLoadMissingReturnsFreshDefault(t *testing.T) {
	st := newTestStore(t)

	s, err := st.Load("fresh-session")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ID != "fresh-session" {
		t.Errorf("ID = %q, want fresh-session", s.ID)
	}
	if s.ToolCallCount != 0 || s.Blocked {
		t.Errorf("fresh session not default: %+v", s)
	}
	if len(s.Gates) != len(gate.AllNames()) {
		t.Errorf("fresh session has %d gates, want %d", len(s.Gates), len(gate.AllNames()))
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Update("s1", func(s *Session) error {
		s.ToolCallCount = 7
		s.OpenGate(gate.Task, "task_bound", s.UpdatedAt)
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	s, err := st.Load("s1")
	if err != nil {
		t.Fatalf("Load after update: %v", err)
	}
	if s.ToolCallCount != 7 {
		t.Errorf("ToolCallCount = %d, want 7", s.ToolCallCount)
	}
	if s.GateStatus(gate.Task) != gate.StatusOpen {
		t.Error("task gate not persisted as open")
	}
	if s.Gates[gate.Task].OpenedBy != "task_bound" {
		t.Errorf("OpenedBy = %q, want task_bound", s.Gates[gate.Task].OpenedBy)
	}
}

func TestUpdateMutatorErrorDiscardsWrite(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.Update("s1", func(s *Session) error {
		s.ToolCallCount = 3
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	wantErr := errors.New("mutator failed")
	_, err := st.Update("s1", func(s *Session) error {
		s.ToolCallCount = 99
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Update err = %v, want mutator error", err)
	}

	s, err := st.Load("s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ToolCallCount != 3 {
		t.Errorf("failed mutation persisted: count = %d, want 3", s.ToolCallCount)
	}
}

func TestCorruptSessionFailsFast(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir, gate.DefaultRegistry())

	sessDir := filepath.Join(dir, SessionsDir)
	if err := os.MkdirAll(sessDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sessDir, "bad.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Load("bad"); !errors.Is(err, ErrCorruptSessionState) {
		t.Errorf("Load corrupt: err = %v, want ErrCorruptSessionState", err)
	}
	// The store must not silently recreate the record on update either.
	if _, err := st.Update("bad", func(*Session) error { return nil }); !errors.Is(err, ErrCorruptSessionState) {
		t.Errorf("Update corrupt: err = %v, want ErrCorruptSessionState", err)
	}
}

func TestLoadRejectsUnknownGateInRecord(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir, gate.DefaultRegistry())

	sessDir := filepath.Join(dir, SessionsDir)
	if err := os.MkdirAll(sessDir, 0700); err != nil {
		t.Fatal(err)
	}
	record := `{"session_id":"s1","gates":{"adhoc":{"status":"open"}},"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`
	if err := os.WriteFile(filepath.Join(sessDir, "s1.json"), []byte(record), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Load("s1"); !errors.Is(err, gate.ErrUnknownGate) {
		t.Errorf("Load with ad hoc gate: err = %v, want ErrUnknownGate", err)
	}
}

func TestValidateID(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.Load(""); !errors.Is(err, ErrSessionIDRequired) {
		t.Errorf("empty ID: err = %v, want ErrSessionIDRequired", err)
	}
	for _, id := range []string{"../escape", "a/b", `a\b`, ".", ".."} {
		if _, err := st.Load(id); err == nil {
			t.Errorf("Load(%q) succeeded, want error", id)
		}
	}
}

func TestList(t *testing.T) {
	st := newTestStore(t)

	ids, err := st.List()
	if err != nil {
		t.Fatalf("List empty: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("List on empty store = %v", ids)
	}

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if _, err := st.Update(id, func(*Session) error { return nil }); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	ids, err = st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	if len(ids) != len(want) {
		t.Fatalf("List = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

// TestConcurrentUpdatesAreSerialized verifies no lost updates: N concurrent
// counter increments through Update must all land.
func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	st := newTestStore(t)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Update("contended", func(s *Session) error {
				s.ToolCallCount++
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Update: %v", err)
		}
	}

	s, err := st.Load("contended")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ToolCallCount != workers {
		t.Errorf("ToolCallCount = %d, want %d (lost updates)", s.ToolCallCount, workers)
	}
}
