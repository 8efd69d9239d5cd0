// Package block implements the durable, append-only registry of session
// block decisions. Every BLOCK verdict lands here so a human can review it;
// clearing a block is an explicit operator action that appends a tombstone
// rather than rewriting history.
package block

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// RegistryFile is the JSONL file holding block records under the base dir.
const RegistryFile = "blocks.jsonl"

// Record is one entry in the block registry: either a block decision or a
// tombstone clearing an earlier one (Clears set).
type Record struct {
	// ID uniquely identifies this record.
	ID string `json:"id"`

	// SessionID is the blocked session.
	SessionID string `json:"session_id"`

	// Timestamp is when the record was written.
	Timestamp time.Time `json:"timestamp"`

	// Issue describes what triggered the block.
	Issue string `json:"issue,omitempty"`

	// PrincipleReference names the violated principle, if any.
	PrincipleReference string `json:"principle_reference,omitempty"`

	// CorrectionText is the reviewer's suggested correction.
	CorrectionText string `json:"correction_text,omitempty"`

	// RawContext is a snapshot of the context the reviewer saw.
	RawContext json.RawMessage `json:"raw_context_snapshot,omitempty"`

	// Clears references the ID of the block this tombstone invalidates.
	Clears string `json:"clears,omitempty"`

	// ClearedBy identifies who cleared the block (operator name or tool).
	ClearedBy string `json:"cleared_by,omitempty"`
}

// IsTombstone reports whether the record clears an earlier block.
func (r Record) IsTombstone() bool {
	return r.Clears != ""
}

// Registry is the append-only block log.
type Registry struct {
	path string
}

// NewRegistry creates a registry rooted at baseDir.
func NewRegistry(baseDir string) *Registry {
	return &Registry{path: filepath.Join(baseDir, RegistryFile)}
}

// Append writes a record to the log. An empty ID or Timestamp is filled in.
// The append holds an exclusive flock so concurrent writers (main agent and
// sub-agent processes) never interleave partial lines.
func (r *Registry) Append(rec Record) (Record, error) {
	if rec.SessionID == "" {
		return Record{}, ErrSessionIDRequired
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Record{}, fmt.Errorf("create block registry directory: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return Record{}, fmt.Errorf("open block registry: %w", err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // close best-effort after write
	}()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return Record{}, fmt.Errorf("lock block registry: %w", err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck // unlock best-effort
	}()

	line, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("marshal block record: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return Record{}, fmt.Errorf("write block record: %w", err)
	}
	return rec, nil
}

// List returns every record in the log, oldest first.
func (r *Registry) List() (records []Record, err error) {
	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open block registry: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // Skip malformed lines
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// Active returns the uncleared block records for a session, oldest first.
// Pass an empty session ID to get active blocks across all sessions.
func (r *Registry) Active(sessionID string) ([]Record, error) {
	records, err := r.List()
	if err != nil {
		return nil, err
	}

	cleared := make(map[string]bool)
	for _, rec := range records {
		if rec.IsTombstone() {
			cleared[rec.Clears] = true
		}
	}

	var active []Record
	for _, rec := range records {
		if rec.IsTombstone() || cleared[rec.ID] {
			continue
		}
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		active = append(active, rec)
	}
	return active, nil
}

// Clear appends tombstones for every active block on the session and
// returns the records that were cleared. The caller is responsible for
// flipping the session's blocked flag through the session store.
func (r *Registry) Clear(sessionID, clearedBy, reason string, now time.Time) ([]Record, error) {
	active, err := r.Active(sessionID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: session %s", ErrNoActiveBlock, sessionID)
	}

	for _, rec := range active {
		tomb := Record{
			SessionID: sessionID,
			Timestamp: now,
			Issue:     reason,
			Clears:    rec.ID,
			ClearedBy: clearedBy,
		}
		if _, err := r.Append(tomb); err != nil {
			return nil, err
		}
	}
	return active, nil
}
