package gate

import "testing"

func TestParseName(t *testing.T) {
	cases := []struct {
		in   string
		want Name
	}{
		{"task", Task},
		{"TASK", Task},
		{" hydration ", Hydration},
		{"critic", Critic},
		{"custodiet", Custodiet},
		{"qa", QA},
		{"handover", Handover},
		{"work-item", Task},
		{"plan", Critic},
		{"audit", Custodiet},
		{"", ""},
		{"nonsense", ""},
	}

	for _, tc := range cases {
		if got := ParseName(tc.in); got != tc.want {
			t.Errorf("ParseName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNameIsValid(t *testing.T) {
	for _, name := range AllNames() {
		if !name.IsValid() {
			t.Errorf("catalog gate %q should be valid", name)
		}
	}
	if Name("bogus").IsValid() {
		t.Error("Name(\"bogus\").IsValid() = true, want false")
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"read_only", CategoryReadOnly},
		{"readonly", CategoryReadOnly},
		{"read-only", CategoryReadOnly},
		{"mutating", CategoryMutating},
		{"write", CategoryMutating},
		{"always_available", CategoryAlwaysAvailable},
		{"always", CategoryAlwaysAvailable},
		{"terminal", CategoryTerminal},
		{"MUTATING", CategoryMutating},
		{"", ""},
		{"destructive", ""},
	}

	for _, tc := range cases {
		if got := ParseCategory(tc.in); got != tc.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"warn", ModeWarn},
		{"advisory", ModeWarn},
		{"block", ModeBlock},
		{"enforce", ModeBlock},
		{"Block", ModeBlock},
		{"", ""},
		{"strict", ""},
	}

	for _, tc := range cases {
		if got := ParseMode(tc.in); got != tc.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
