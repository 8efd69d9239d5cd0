package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/nicsuzor/sessiongate/internal/gate"
)

const (
	// SessionsDir holds one JSON record per session under the base dir.
	SessionsDir = "sessions"

	// lockSuffix is appended to the record path for the per-session lock file.
	lockSuffix = ".lock"
)

// Store persists session records on the local filesystem. Updates are
// serialized across OS processes with an exclusive flock held for the whole
// read-modify-write, and records are written via temp-file-and-rename so
// readers only ever see fully-formed, previously-committed state.
type Store struct {
	baseDir  string
	registry *gate.Registry
}

// NewStore creates a store rooted at baseDir. The registry seeds fresh
// sessions with every catalog gate closed and validates loaded records.
func NewStore(baseDir string, registry *gate.Registry) *Store {
	return &Store{baseDir: baseDir, registry: registry}
}

// Init creates the required directory structure.
func (st *Store) Init() error {
	dir := filepath.Join(st.baseDir, SessionsDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// Load returns the session record for the given ID, or a fresh default
// session (not yet persisted) if none exists. An existing but unreadable
// record fails with ErrCorruptSessionState rather than being reset.
func (st *Store) Load(id string) (*Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return st.read(id, time.Now())
}

// Update performs an atomic read-modify-write of the session record:
// it acquires the per-session lock, loads the current record (creating a
// fresh default if absent), applies mutate, and persists the result.
// Concurrent callers for the same ID observe serializable updates.
func (st *Store) Update(id string, mutate func(*Session) error) (*Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := st.Init(); err != nil {
		return nil, err
	}

	lockFile, err := os.OpenFile(st.lockPath(id), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open session lock: %w", err)
	}
	defer func() {
		_ = lockFile.Close() //nolint:errcheck // lock released on close
	}()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return nil, fmt.Errorf("lock session %s: %w", id, err)
	}
	defer func() {
		_ = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN) //nolint:errcheck // unlock best-effort
	}()

	now := time.Now()
	sess, err := st.read(id, now)
	if err != nil {
		return nil, err
	}

	if err := mutate(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = now

	if err := st.write(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// List returns the IDs of all persisted sessions, sorted.
func (st *Store) List() ([]string, error) {
	dir := filepath.Join(st.baseDir, SessionsDir)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// read loads the record from disk, returning a fresh default if absent.
func (st *Store) read(id string, now time.Time) (*Session, error) {
	data, err := os.ReadFile(st.path(id))
	if os.IsNotExist(err) {
		return New(id, st.registry.Names(), now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: session %s: %v", ErrCorruptSessionState, id, err)
	}
	if sess.ID == "" || sess.Gates == nil {
		return nil, fmt.Errorf("%w: session %s: missing required fields", ErrCorruptSessionState, id)
	}

	// The gate map may only contain catalog gates.
	for name := range sess.Gates {
		if _, ok := st.registry.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q in session %s", gate.ErrUnknownGate, name, id)
		}
	}
	// Gates added to the catalog after the record was created start closed.
	for _, name := range st.registry.Names() {
		if _, ok := sess.Gates[name]; !ok {
			sess.Gates[name] = GateState{Status: gate.StatusClosed}
		}
	}

	return &sess, nil
}

// write persists the record via temp file and atomic rename.
func (st *Store) write(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	path := st.path(sess.ID)
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if _, err := tmpFile.Write(append(data, '\n')); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync session: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}
	success = true
	return nil
}

func (st *Store) path(id string) string {
	return filepath.Join(st.baseDir, SessionsDir, id+".json")
}

func (st *Store) lockPath(id string) string {
	return filepath.Join(st.baseDir, SessionsDir, id+lockSuffix)
}

// validateID rejects empty IDs and IDs that would escape the sessions dir.
func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrSessionIDRequired
	}
	if strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return fmt.Errorf("invalid session ID %q", id)
	}
	return nil
}

// IsCorrupt reports whether err indicates an unreadable session record.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptSessionState)
}
