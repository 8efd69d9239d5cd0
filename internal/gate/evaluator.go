package gate

import (
	"fmt"
	"strings"
)

// Snapshot is the read-only view of session state the evaluator needs.
// The caller builds it from a committed session record; the evaluator
// itself performs no I/O and mutates nothing.
type Snapshot struct {
	// Gates maps every catalog gate to its current status.
	Gates map[Name]Status

	// Blocked indicates a durable session-level block.
	Blocked bool

	// BlockReason is present iff Blocked.
	BlockReason string
}

// Verdict is the evaluator's decision for a proposed action.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictDeny  Verdict = "deny"
)

// Decision is the structured outcome returned to the host for every event.
type Decision struct {
	// Verdict is allow or deny.
	Verdict Verdict `json:"verdict"`

	// MissingGates lists closed applicable gates, in catalog order.
	// Empty when the call is allowed cleanly.
	MissingGates []Name `json:"missing_gates,omitempty"`

	// AdvisoryText is instructional text to surface to the calling agent.
	AdvisoryText string `json:"advisory_text,omitempty"`

	// Blocked reports the session-level block flag.
	Blocked bool `json:"blocked"`

	// AuditRequired indicates a compliance audit must run before the next
	// mutating action proceeds.
	AuditRequired bool `json:"audit_required,omitempty"`
}

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool {
	return d.Verdict == VerdictAllow
}

// Evaluate computes the verdict for a tool call of the given category against
// a session snapshot. It is a pure function: all state mutation (counters,
// gate opens) happens in the session store, invoked separately by the caller.
func (r *Registry) Evaluate(category Category, snap Snapshot, mode Mode) Decision {
	// A durable block short-circuits everything else.
	if snap.Blocked {
		return Decision{
			Verdict:      VerdictDeny,
			Blocked:      true,
			AdvisoryText: fmt.Sprintf("session blocked: %s", snap.BlockReason),
		}
	}

	applicable := r.Applicable(category)
	if len(applicable) == 0 {
		return Decision{Verdict: VerdictAllow}
	}

	var missing []Name
	for _, def := range applicable {
		if snap.Gates[def.Name] != StatusOpen {
			missing = append(missing, def.Name)
		}
	}
	if len(missing) == 0 {
		return Decision{Verdict: VerdictAllow}
	}

	advisory := r.formatMissing(missing)
	if mode == ModeBlock {
		return Decision{
			Verdict:      VerdictDeny,
			MissingGates: missing,
			AdvisoryText: advisory,
		}
	}
	return Decision{
		Verdict:      VerdictAllow,
		MissingGates: missing,
		AdvisoryText: advisory,
	}
}

// formatMissing renders the instruction listing for closed gates.
func (r *Registry) formatMissing(missing []Name) string {
	var b strings.Builder
	b.WriteString("unmet gates:\n")
	for _, name := range missing {
		def := r.defs[name]
		fmt.Fprintf(&b, "- %s: %s\n", name, def.Instruction)
	}
	return strings.TrimRight(b.String(), "\n")
}
