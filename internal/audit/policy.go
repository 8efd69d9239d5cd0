package audit

import (
	"fmt"
	"time"

	"github.com/nicsuzor/sessiongate/internal/gate"
	"github.com/nicsuzor/sessiongate/internal/session"
)

// Result is the enforcement policy's interpretation of a review verdict.
type Result struct {
	// Applied is the verdict after mode validation (a WARN arriving in
	// block mode, or a BLOCK in warn mode, collapses to CANNOT_ASSESS).
	Applied Verdict

	// Cleared is true when the audit requirement was satisfied and the
	// counter baseline reset.
	Cleared bool

	// Block instructs the caller to persist a block record; the session's
	// blocked flag has already been set.
	Block bool

	// Failed is the CANNOT_ASSESS path: the pending action is denied and
	// the audit is considered not yet performed (baseline untouched).
	Failed bool

	// Advisory is text to surface to the calling agent.
	Advisory string
}

// ApplyReview runs the enforcement policy transitions on the session record.
// It mutates counters, gates, and the blocked flag; it performs no I/O.
// The caller is responsible for persisting the session and, when Block is
// set, writing the corresponding block record before committing the session
// so a blocked session always has a registry entry.
func ApplyReview(sess *session.Session, rev Review, mode gate.Mode, now time.Time) Result {
	applied := rev.Verdict

	// A verdict only valid under the other mode is an invalid input, and
	// invalid input fails closed.
	if (applied == VerdictWarn && mode != gate.ModeWarn) ||
		(applied == VerdictBlock && mode != gate.ModeBlock) {
		applied = VerdictCannotAssess
	}

	switch applied {
	case VerdictOK:
		sess.LastAuditAt = &now
		sess.CountAtLastAudit = sess.ToolCallCount
		sess.OpenGate(gate.Custodiet, "audit_ok", now)
		return Result{Applied: applied, Cleared: true}

	case VerdictWarn:
		sess.LastAuditAt = &now
		sess.CountAtLastAudit = sess.ToolCallCount
		sess.OpenGate(gate.Custodiet, "audit_ok", now)
		return Result{
			Applied:  applied,
			Cleared:  true,
			Advisory: warnAdvisory(rev),
		}

	case VerdictBlock:
		reason := rev.Issue
		if reason == "" {
			reason = "compliance review returned BLOCK"
		}
		sess.Blocked = true
		sess.BlockReason = reason
		sess.CloseGate(gate.Custodiet)
		return Result{
			Applied:  applied,
			Block:    true,
			Advisory: fmt.Sprintf("session blocked: %s", reason),
		}
	}

	// CANNOT_ASSESS: deny the pending action, leave the baseline untouched
	// so the very next mutating attempt re-triggers the audit requirement.
	sess.CloseGate(gate.Custodiet)
	return Result{
		Applied:  VerdictCannotAssess,
		Failed:   true,
		Advisory: "compliance verdict could not be assessed; audit is still required",
	}
}

func warnAdvisory(rev Review) string {
	text := rev.Issue
	if text == "" {
		text = "compliance review returned WARN"
	}
	if rev.Correction != "" {
		text = fmt.Sprintf("%s (suggested correction: %s)", text, rev.Correction)
	}
	return fmt.Sprintf("compliance warning: %s", text)
}
