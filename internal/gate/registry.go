package gate

import "fmt"

// Definition describes a single registered gate: the event that opens it,
// whether a new user prompt closes it again, which tool categories it
// restricts, and the instruction text surfaced when it blocks a call.
// The instruction is opaque payload; the evaluator returns it verbatim.
type Definition struct {
	// Name is the canonical gate name.
	Name Name `json:"name" yaml:"name"`

	// OpensOn is the event name that opens this gate (e.g. "task_bound").
	OpensOn string `json:"opens_on" yaml:"opens_on"`

	// ResetsOnPrompt closes the gate again on every prompt_submitted event.
	ResetsOnPrompt bool `json:"resets_on_prompt" yaml:"resets_on_prompt"`

	// AppliesTo lists the tool categories this gate restricts. Empty means
	// the gate never restricts a tool call directly (status-only gates).
	AppliesTo []Category `json:"applies_to" yaml:"applies_to"`

	// Instruction tells the agent how to satisfy the gate.
	Instruction string `json:"instruction" yaml:"instruction"`
}

// appliesTo reports whether the definition restricts the given category.
func (d Definition) appliesTo(category Category) bool {
	for _, c := range d.AppliesTo {
		if c == category {
			return true
		}
	}
	return false
}

// Registry is the fixed, validated catalog of gates for a deployment.
type Registry struct {
	defs  map[Name]Definition
	order []Name
}

// NewRegistry validates definitions and builds a registry. Every definition
// must use a catalog gate name, and no gate may be registered twice.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{defs: make(map[Name]Definition, len(defs))}
	for _, def := range defs {
		name := ParseName(string(def.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGate, def.Name)
		}
		if _, exists := r.defs[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateGate, name)
		}
		def.Name = name
		r.defs[name] = def
		r.order = append(r.order, name)
	}
	return r, nil
}

// DefaultRegistry returns the standard gate catalog.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultDefinitions())
	if err != nil {
		// defaultDefinitions is static and validated by tests.
		panic(err)
	}
	return r
}

// defaultDefinitions is the standard catalog configuration.
func defaultDefinitions() []Definition {
	return []Definition{
		{
			Name:        Task,
			OpensOn:     "task_bound",
			AppliesTo:   []Category{CategoryMutating},
			Instruction: "Bind this work to a tracked task before making changes. Create or claim a work item, then emit a task_bound event.",
		},
		{
			Name:           Hydration,
			OpensOn:        "hydration_complete",
			ResetsOnPrompt: true,
			AppliesTo:      []Category{CategoryMutating},
			Instruction:    "Hydrate session context for this prompt (load relevant prior knowledge) before making changes.",
		},
		{
			Name:           Critic,
			OpensOn:        "critic_approved",
			ResetsOnPrompt: true,
			AppliesTo:      []Category{CategoryMutating},
			Instruction:    "Have the execution plan for this prompt reviewed by the critic before making changes.",
		},
		{
			Name:        Custodiet,
			OpensOn:     "audit_ok",
			Instruction: "A periodic compliance audit is due. Obtain an audit verdict before further mutating actions.",
		},
		{
			Name:        QA,
			OpensOn:     "qa_passed",
			AppliesTo:   []Category{CategoryTerminal},
			Instruction: "Run the QA checklist and emit qa_passed before closing the session.",
		},
		{
			Name:        Handover,
			OpensOn:     "handover_written",
			AppliesTo:   []Category{CategoryTerminal},
			Instruction: "Write the handover note for the next session and emit handover_written before closing.",
		},
	}
}

// Lookup returns the definition for a gate name.
func (r *Registry) Lookup(name Name) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns all registered gate names in registration order.
func (r *Registry) Names() []Name {
	names := make([]Name, len(r.order))
	copy(names, r.order)
	return names
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.defs[name])
	}
	return defs
}

// Applicable returns the definitions restricting the given category,
// in registration order.
func (r *Registry) Applicable(category Category) []Definition {
	var defs []Definition
	for _, name := range r.order {
		if def := r.defs[name]; def.appliesTo(category) {
			defs = append(defs, def)
		}
	}
	return defs
}

// PromptScoped returns the gates that close again on a new prompt.
func (r *Registry) PromptScoped() []Name {
	var names []Name
	for _, name := range r.order {
		if r.defs[name].ResetsOnPrompt {
			names = append(names, name)
		}
	}
	return names
}

// OpenedBy resolves the gate opened by the given event name.
func (r *Registry) OpenedBy(event string) (Name, error) {
	for _, name := range r.order {
		if r.defs[name].OpensOn == event {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOpenEvent, event)
}
