// Package router receives typed session events and dispatches them to the
// gate logic relevant to each event type. It is the single entry point the
// host process calls once per event; all state lives in the session store.
package router

import (
	"encoding/json"
	"strings"
	"time"
)

// Type identifies a session event.
type Type string

const (
	// EventSessionStart initializes the session record if absent.
	EventSessionStart Type = "session_start"

	// EventPromptSubmitted resets the prompt-scoped gates.
	EventPromptSubmitted Type = "prompt_submitted"

	// EventPreToolCall evaluates the gates for a proposed tool call.
	EventPreToolCall Type = "pre_tool_call"

	// EventPostToolCall records a finished tool call and applies any
	// gate-opening effect its result carries.
	EventPostToolCall Type = "post_tool_call"

	// EventSubagentFinished has no gate effect by default.
	EventSubagentFinished Type = "subagent_finished"

	// EventSessionStop runs the terminal gates as a final pass.
	EventSessionStop Type = "session_stop"

	// EventGateOpen explicitly opens a gate (e.g. task_bound).
	EventGateOpen Type = "gate_event"

	// EventAuditVerdict applies an external compliance review verdict.
	EventAuditVerdict Type = "audit_verdict"
)

// typeAliases maps alternative spellings to canonical event types.
var typeAliases = map[string]Type{
	"session_start":     EventSessionStart,
	"prompt_submitted":  EventPromptSubmitted,
	"pre_tool_call":     EventPreToolCall,
	"post_tool_call":    EventPostToolCall,
	"subagent_finished": EventSubagentFinished,
	"session_stop":      EventSessionStop,
	"gate_event":        EventGateOpen,
	"audit_verdict":     EventAuditVerdict,

	// Host hook names.
	"sessionstart":     EventSessionStart,
	"userpromptsubmit": EventPromptSubmitted,
	"pretooluse":       EventPreToolCall,
	"posttooluse":      EventPostToolCall,
	"subagentstop":     EventSubagentFinished,
	"stop":             EventSessionStop,
}

// ParseType normalizes an event type string.
// Returns empty string if the type is not recognized.
func ParseType(s string) Type {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if t, ok := typeAliases[normalized]; ok {
		return t
	}
	return ""
}

// Event is the structured input received once per host invocation.
type Event struct {
	// SessionID identifies the session the event belongs to.
	SessionID string `json:"session_id"`

	// Type is the event type.
	Type Type `json:"event_type"`

	// ToolName names the tool for tool events.
	ToolName string `json:"tool_name,omitempty"`

	// Category is the caller's static classification of the tool
	// (read_only, mutating, always_available). Never inferred here.
	Category string `json:"category,omitempty"`

	// OpensGate carries a gate-opening event name (e.g. "task_bound") on
	// post_tool_call and gate_event payloads.
	OpensGate string `json:"opens_gate,omitempty"`

	// Verdict is the raw review payload on audit_verdict events.
	Verdict json.RawMessage `json:"verdict,omitempty"`

	// Timestamp is when the event occurred; zero means now.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// when returns the event time, defaulting to now.
func (e Event) when() time.Time {
	if e.Timestamp.IsZero() {
		return time.Now()
	}
	return e.Timestamp
}
