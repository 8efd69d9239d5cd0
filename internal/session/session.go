// Package session defines the per-session record tracked by the policy gate
// and the flock-backed store that persists it across process invocations.
package session

import (
	"time"

	"github.com/nicsuzor/sessiongate/internal/gate"
)

// GateState records the status of one gate within a session.
type GateState struct {
	// Status is open or closed.
	Status gate.Status `json:"status"`

	// OpenedAt is when the gate last transitioned to open.
	OpenedAt *time.Time `json:"opened_at,omitempty"`

	// OpenedBy is the event name that opened the gate.
	OpenedBy string `json:"opened_by,omitempty"`
}

// Session is the durable record for one agent working session.
type Session struct {
	// ID is the opaque session identifier assigned by the caller.
	ID string `json:"session_id"`

	// Gates maps every catalog gate to its state.
	Gates map[gate.Name]GateState `json:"gates"`

	// ToolCallCount increments on every tool-call event.
	ToolCallCount int `json:"tool_call_count"`

	// CountAtLastAudit is the counter baseline set by the last clean audit.
	CountAtLastAudit int `json:"count_at_last_audit"`

	// LastAuditAt is when the last clean audit verdict landed.
	LastAuditAt *time.Time `json:"last_audit_at,omitempty"`

	// Blocked is the durable session-level block flag. When set, no
	// mutating action is permitted regardless of gate status.
	Blocked bool `json:"blocked"`

	// BlockReason is present iff Blocked.
	BlockReason string `json:"block_reason,omitempty"`

	// CreatedAt is when the record was first persisted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is bumped on every persisted mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh default session: all catalog gates closed, counters
// zero, not blocked.
func New(id string, names []gate.Name, now time.Time) *Session {
	gates := make(map[gate.Name]GateState, len(names))
	for _, name := range names {
		gates[name] = GateState{Status: gate.StatusClosed}
	}
	return &Session{
		ID:        id,
		Gates:     gates,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GateStatus returns the status of a gate, treating absent entries as closed.
func (s *Session) GateStatus(name gate.Name) gate.Status {
	if st, ok := s.Gates[name]; ok && st.Status == gate.StatusOpen {
		return gate.StatusOpen
	}
	return gate.StatusClosed
}

// OpenGate transitions a gate to open. Opening an already-open gate is a
// no-op (state and opened_at unchanged). Returns true if the state changed.
func (s *Session) OpenGate(name gate.Name, event string, now time.Time) bool {
	if s.GateStatus(name) == gate.StatusOpen {
		return false
	}
	s.Gates[name] = GateState{
		Status:   gate.StatusOpen,
		OpenedAt: &now,
		OpenedBy: event,
	}
	return true
}

// CloseGate transitions a gate back to closed.
func (s *Session) CloseGate(name gate.Name) {
	s.Gates[name] = GateState{Status: gate.StatusClosed}
}

// Snapshot builds the read-only view consumed by the gate evaluator.
func (s *Session) Snapshot() gate.Snapshot {
	gates := make(map[gate.Name]gate.Status, len(s.Gates))
	for name := range s.Gates {
		gates[name] = s.GateStatus(name)
	}
	return gate.Snapshot{
		Gates:       gates,
		Blocked:     s.Blocked,
		BlockReason: s.BlockReason,
	}
}

// AuditDue reports whether enough tool calls have accumulated since the last
// clean audit to require a compliance pause before the next mutating action.
func (s *Session) AuditDue(threshold int) bool {
	if threshold <= 0 {
		return false
	}
	return s.ToolCallCount-s.CountAtLastAudit >= threshold
}
