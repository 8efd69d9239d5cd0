package audit

import "testing"

// TestParseReviewFailsClosed: anything that is not exactly OK, WARN, or
// BLOCK must come back CANNOT_ASSESS, never OK.
func TestParseReviewFailsClosed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"lowercase ok", "ok"},
		{"mixed case", "Ok"},
		{"unknown token", "APPROVED"},
		{"trailing junk", "OK please"},
		{"malformed json", `{not json`},
		{"json without verdict", `{"issue":"something"}`},
		{"json with unknown verdict", `{"verdict":"FINE"}`},
		{"json number", `42`},
		{"explicit cannot assess", `CANNOT_ASSESS`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rev := ParseReview([]byte(tc.raw))
			if rev.Verdict != VerdictCannotAssess {
				t.Errorf("ParseReview(%q).Verdict = %q, want CANNOT_ASSESS", tc.raw, rev.Verdict)
			}
		})
	}
}

func TestParseReviewValidTokens(t *testing.T) {
	cases := []struct {
		raw  string
		want Verdict
	}{
		{"OK", VerdictOK},
		{"  OK  ", VerdictOK},
		{"WARN", VerdictWarn},
		{"BLOCK", VerdictBlock},
		{`"OK"`, VerdictOK},
		{`"BLOCK"`, VerdictBlock},
	}

	for _, tc := range cases {
		rev := ParseReview([]byte(tc.raw))
		if rev.Verdict != tc.want {
			t.Errorf("ParseReview(%q).Verdict = %q, want %q", tc.raw, rev.Verdict, tc.want)
		}
	}
}

func TestParseReviewObjectPayload(t *testing.T) {
	raw := `{"verdict":"BLOCK","issue":"scope drift detected","principle_reference":"P-3","correction_text":"return to plan"}`
	rev := ParseReview([]byte(raw))

	if rev.Verdict != VerdictBlock {
		t.Fatalf("Verdict = %q, want BLOCK", rev.Verdict)
	}
	if rev.Issue != "scope drift detected" {
		t.Errorf("Issue = %q", rev.Issue)
	}
	if rev.PrincipleReference != "P-3" {
		t.Errorf("PrincipleReference = %q", rev.PrincipleReference)
	}
	if rev.Correction != "return to plan" {
		t.Errorf("Correction = %q", rev.Correction)
	}
}
