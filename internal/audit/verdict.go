// Package audit implements the periodic compliance audit machinery: parsing
// externally-produced review verdicts, applying them to session state under
// the configured enforcement mode, and the append-only audit log.
package audit

import (
	"encoding/json"
	"strings"
)

// Verdict is the outcome of an external compliance review.
type Verdict string

const (
	VerdictOK           Verdict = "OK"
	VerdictWarn         Verdict = "WARN"
	VerdictBlock        Verdict = "BLOCK"
	VerdictCannotAssess Verdict = "CANNOT_ASSESS"
)

// Review is the full payload of an external review verdict.
type Review struct {
	// Verdict is the reviewer's decision.
	Verdict Verdict `json:"verdict"`

	// Issue describes the finding (required for WARN and BLOCK).
	Issue string `json:"issue,omitempty"`

	// PrincipleReference names the violated principle, if any.
	PrincipleReference string `json:"principle_reference,omitempty"`

	// Correction is the reviewer's suggested correction.
	Correction string `json:"correction_text,omitempty"`

	// Context is a snapshot of what the reviewer saw.
	Context json.RawMessage `json:"raw_context_snapshot,omitempty"`
}

// ParseReview interprets a raw verdict payload. It accepts a JSON object
// with a "verdict" field, a JSON string, or a bare token. Anything that does
// not resolve to exactly OK, WARN, or BLOCK yields CANNOT_ASSESS — ambiguity
// fails closed, never silently promoted to success.
func ParseReview(raw []byte) Review {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Review{Verdict: VerdictCannotAssess, Issue: "empty verdict payload"}
	}

	// JSON object with a verdict field.
	if strings.HasPrefix(trimmed, "{") {
		var rev Review
		if err := json.Unmarshal([]byte(trimmed), &rev); err != nil {
			return Review{Verdict: VerdictCannotAssess, Issue: "unparseable verdict payload"}
		}
		rev.Verdict = parseToken(string(rev.Verdict))
		if rev.Verdict == VerdictCannotAssess && rev.Issue == "" {
			rev.Issue = "unrecognized verdict value"
		}
		return rev
	}

	// JSON string.
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return Review{Verdict: VerdictCannotAssess, Issue: "unparseable verdict payload"}
		}
		trimmed = s
	}

	v := parseToken(trimmed)
	if v == VerdictCannotAssess {
		return Review{Verdict: v, Issue: "unrecognized verdict value"}
	}
	return Review{Verdict: v}
}

// parseToken matches a verdict token exactly. CANNOT_ASSESS is accepted as
// an explicit input; everything unrecognized collapses to it.
func parseToken(s string) Verdict {
	switch Verdict(strings.TrimSpace(s)) {
	case VerdictOK:
		return VerdictOK
	case VerdictWarn:
		return VerdictWarn
	case VerdictBlock:
		return VerdictBlock
	}
	return VerdictCannotAssess
}
