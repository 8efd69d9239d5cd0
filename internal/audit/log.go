package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/nicsuzor/sessiongate/internal/gate"
)

// LogFile is the JSONL file holding audit records under the base dir.
const LogFile = "audit.jsonl"

// Record is one applied audit verdict, appended to the audit log.
type Record struct {
	// ID uniquely identifies this record.
	ID string `json:"id"`

	// SessionID is the audited session.
	SessionID string `json:"session_id"`

	// TriggeredAt is when the verdict was applied.
	TriggeredAt time.Time `json:"triggered_at"`

	// ToolCallCount is the session counter at the time of the verdict.
	ToolCallCount int `json:"tool_call_count_at_trigger"`

	// Verdict is the applied verdict after mode validation.
	Verdict Verdict `json:"verdict"`

	// Mode is the enforcement mode the verdict was applied under.
	Mode gate.Mode `json:"mode"`
}

// Log is the append-only audit trail.
type Log struct {
	path string
}

// NewLog creates an audit log rooted at baseDir.
func NewLog(baseDir string) *Log {
	return &Log{path: filepath.Join(baseDir, LogFile)}
}

// Append writes a record to the log under an exclusive flock.
// An empty ID or TriggeredAt is filled in.
func (l *Log) Append(rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.TriggeredAt.IsZero() {
		rec.TriggeredAt = time.Now()
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create audit log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // close best-effort after write
	}()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock audit log: %w", err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck // unlock best-effort
	}()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// List returns every record in the log, oldest first.
func (l *Log) List() (records []Record, err error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
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
