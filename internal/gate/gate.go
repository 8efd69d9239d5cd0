// Package gate defines the catalog of session gates and the pure evaluator
// that decides whether a proposed tool call may proceed. A gate is a named
// precondition (open/closed) that restricts one or more tool categories until
// an authorized event opens it.
package gate

import "strings"

// Name identifies a registered gate.
type Name string

const (
	// Task gates mutating work on binding it to a tracked task.
	Task Name = "task"

	// Hydration gates mutating work on context hydration having run.
	Hydration Name = "hydration"

	// Critic gates mutating work on a reviewed execution plan.
	Critic Name = "critic"

	// Custodiet reflects the most recent periodic compliance audit.
	Custodiet Name = "custodiet"

	// QA is a terminal gate checked at session close.
	QA Name = "qa"

	// Handover is a terminal gate checked at session close.
	Handover Name = "handover"
)

// AllNames returns all catalog gate names in evaluation order.
func AllNames() []Name {
	return []Name{Task, Hydration, Critic, Custodiet, QA, Handover}
}

// nameAliases maps alternative spellings to canonical gate names.
var nameAliases = map[string]Name{
	"task":      Task,
	"hydration": Hydration,
	"critic":    Critic,
	"custodiet": Custodiet,
	"qa":        QA,
	"handover":  Handover,

	// Common aliases seen in host configurations.
	"work-item": Task,
	"context":   Hydration,
	"plan":      Critic,
	"audit":     Custodiet,
	"hand-over": Handover,
}

// ParseName normalizes a gate name to its canonical form.
// Returns empty string if the name is not recognized.
func ParseName(name string) Name {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if n, ok := nameAliases[normalized]; ok {
		return n
	}
	return ""
}

// IsValid returns true if the name is a recognized catalog gate.
func (n Name) IsValid() bool {
	return ParseName(string(n)) != ""
}

// Status is the open/closed state of a gate.
type Status string

const (
	StatusClosed Status = "closed"
	StatusOpen   Status = "open"
)

// Category classifies a tool invocation by its effect.
type Category string

const (
	// CategoryReadOnly covers tools that cannot change external state.
	CategoryReadOnly Category = "read_only"

	// CategoryMutating covers tools that can change external state.
	CategoryMutating Category = "mutating"

	// CategoryAlwaysAvailable covers tools no gate ever restricts.
	CategoryAlwaysAvailable Category = "always_available"

	// CategoryTerminal is the pseudo-category evaluated at session close.
	CategoryTerminal Category = "terminal"
)

// ParseCategory normalizes a tool category string.
// Returns empty string if the category is not recognized.
func ParseCategory(category string) Category {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "read_only", "readonly", "read-only":
		return CategoryReadOnly
	case "mutating", "write":
		return CategoryMutating
	case "always_available", "always":
		return CategoryAlwaysAvailable
	case "terminal":
		return CategoryTerminal
	}
	return ""
}

// Mode is the deployment-wide enforcement mode.
type Mode string

const (
	// ModeWarn surfaces unmet gates as advisory text but allows the call.
	ModeWarn Mode = "warn"

	// ModeBlock denies calls whose applicable gates are not all open.
	ModeBlock Mode = "block"
)

// ParseMode normalizes an enforcement mode string.
// Returns empty string if the mode is not recognized.
func ParseMode(mode string) Mode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "warn", "warning", "advisory":
		return ModeWarn
	case "block", "enforce":
		return ModeBlock
	}
	return ""
}
