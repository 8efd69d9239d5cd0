package router

import (
	"fmt"

	"github.com/nicsuzor/sessiongate/internal/audit"
	"github.com/nicsuzor/sessiongate/internal/block"
	"github.com/nicsuzor/sessiongate/internal/gate"
	"github.com/nicsuzor/sessiongate/internal/session"
)

// Router wires the session store, gate registry, block registry, and audit
// log behind a single Handle(event) entry point. One Router instance serves
// any number of sessions; all per-session state lives in the store.
type Router struct {
	store    *session.Store
	registry *gate.Registry
	blocks   *block.Registry
	auditLog *audit.Log
	mode     gate.Mode
	// threshold is the tool-call count that forces a compliance pause.
	threshold int
}

// New creates a router. Mode and threshold come from deployment
// configuration and are fixed for the process lifetime.
func New(store *session.Store, registry *gate.Registry, blocks *block.Registry, auditLog *audit.Log, mode gate.Mode, threshold int) *Router {
	return &Router{
		store:     store,
		registry:  registry,
		blocks:    blocks,
		auditLog:  auditLog,
		mode:      mode,
		threshold: threshold,
	}
}

// handlerFuncs maps each event type to its handling method.
var handlerFuncs = map[Type]func(*Router, Event) (gate.Decision, error){
	EventSessionStart:     (*Router).handleSessionStart,
	EventPromptSubmitted:  (*Router).handlePromptSubmitted,
	EventPreToolCall:      (*Router).handlePreToolCall,
	EventPostToolCall:     (*Router).handlePostToolCall,
	EventSubagentFinished: (*Router).handleSubagentFinished,
	EventSessionStop:      (*Router).handleSessionStop,
	EventGateOpen:         (*Router).handleGateOpen,
	EventAuditVerdict:     (*Router).handleAuditVerdict,
}

// Handle processes one event and returns the decision for it. Events for a
// single session are expected in delivery order; concurrent deliveries are
// serialized only at the store's atomic-update boundary.
func (r *Router) Handle(ev Event) (gate.Decision, error) {
	t := ParseType(string(ev.Type))
	if t == "" {
		return gate.Decision{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return handlerFuncs[t](r, ev)
}

// handleSessionStart creates the session record if absent.
func (r *Router) handleSessionStart(ev Event) (gate.Decision, error) {
	_, err := r.store.Update(ev.SessionID, func(*session.Session) error { return nil })
	if err != nil {
		return gate.Decision{}, err
	}
	return gate.Decision{Verdict: gate.VerdictAllow}, nil
}

// handlePromptSubmitted closes the prompt-scoped gates, leaving the rest
// untouched.
func (r *Router) handlePromptSubmitted(ev Event) (gate.Decision, error) {
	_, err := r.store.Update(ev.SessionID, func(s *session.Session) error {
		for _, name := range r.registry.PromptScoped() {
			s.CloseGate(name)
		}
		return nil
	})
	if err != nil {
		return gate.Decision{}, err
	}
	return gate.Decision{Verdict: gate.VerdictAllow}, nil
}

// handlePreToolCall evaluates the gates for the proposed call, applies the
// audit trigger, and increments the tool-call counter. Evaluation and
// counting happen in one atomic update so the decision reflects a committed
// snapshot.
func (r *Router) handlePreToolCall(ev Event) (gate.Decision, error) {
	category := gate.ParseCategory(ev.Category)
	if category == "" {
		return gate.Decision{}, fmt.Errorf("%w: %q", ErrUnknownCategory, ev.Category)
	}

	var dec gate.Decision
	_, err := r.store.Update(ev.SessionID, func(s *session.Session) error {
		dec = r.registry.Evaluate(category, s.Snapshot(), r.mode)

		// The audit trigger runs after the evaluator's decision and only
		// pauses mutating work; a blocked session is already denied.
		if !s.Blocked && category == gate.CategoryMutating && s.AuditDue(r.threshold) {
			dec.AuditRequired = true
			dec.AdvisoryText = appendAdvisory(dec.AdvisoryText, r.auditAdvisory())
			if r.mode == gate.ModeBlock {
				dec.Verdict = gate.VerdictDeny
			}
		}

		s.ToolCallCount++
		return nil
	})
	if err != nil {
		return gate.Decision{}, err
	}
	return dec, nil
}

// handlePostToolCall applies any gate-opening effect the finished tool's
// result carries and persists it.
func (r *Router) handlePostToolCall(ev Event) (gate.Decision, error) {
	if ev.OpensGate == "" {
		// Nothing to record beyond touching the session.
		_, err := r.store.Update(ev.SessionID, func(*session.Session) error { return nil })
		if err != nil {
			return gate.Decision{}, err
		}
		return gate.Decision{Verdict: gate.VerdictAllow}, nil
	}
	return r.openGate(ev)
}

// handleGateOpen explicitly opens the gate named by the event payload.
func (r *Router) handleGateOpen(ev Event) (gate.Decision, error) {
	if ev.OpensGate == "" {
		return gate.Decision{}, fmt.Errorf("%w: gate_event without opens_gate", gate.ErrUnknownOpenEvent)
	}
	return r.openGate(ev)
}

func (r *Router) openGate(ev Event) (gate.Decision, error) {
	name, err := r.registry.OpenedBy(ev.OpensGate)
	if err != nil {
		return gate.Decision{}, err
	}
	_, err = r.store.Update(ev.SessionID, func(s *session.Session) error {
		s.OpenGate(name, ev.OpensGate, ev.when())
		return nil
	})
	if err != nil {
		return gate.Decision{}, err
	}
	return gate.Decision{Verdict: gate.VerdictAllow}, nil
}

// handleSubagentFinished has no gate effect; it only touches the record so
// updated_at reflects the activity.
func (r *Router) handleSubagentFinished(ev Event) (gate.Decision, error) {
	_, err := r.store.Update(ev.SessionID, func(*session.Session) error { return nil })
	if err != nil {
		return gate.Decision{}, err
	}
	return gate.Decision{Verdict: gate.VerdictAllow}, nil
}

// handleSessionStop runs the terminal gates as a final evaluator pass with
// no tool attached. It mutates nothing; the result is a pass/fail verdict
// for session closure.
func (r *Router) handleSessionStop(ev Event) (gate.Decision, error) {
	sess, err := r.store.Load(ev.SessionID)
	if err != nil {
		return gate.Decision{}, err
	}
	dec := r.registry.Evaluate(gate.CategoryTerminal, sess.Snapshot(), r.mode)
	return dec, nil
}

// handleAuditVerdict applies an external review verdict under the
// enforcement policy. A BLOCK writes its registry record inside the same
// session update that sets the blocked flag, so a blocked session always has
// a corresponding block record.
func (r *Router) handleAuditVerdict(ev Event) (gate.Decision, error) {
	if len(ev.Verdict) == 0 {
		return gate.Decision{}, ErrMissingVerdict
	}
	rev := audit.ParseReview(ev.Verdict)

	var res audit.Result
	sess, err := r.store.Update(ev.SessionID, func(s *session.Session) error {
		res = audit.ApplyReview(s, rev, r.mode, ev.when())
		if res.Block {
			rec := block.Record{
				SessionID:          ev.SessionID,
				Timestamp:          ev.when(),
				Issue:              s.BlockReason,
				PrincipleReference: rev.PrincipleReference,
				CorrectionText:     rev.Correction,
				RawContext:         rev.Context,
			}
			if _, err := r.blocks.Append(rec); err != nil {
				return fmt.Errorf("record block: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return gate.Decision{}, err
	}

	if err := r.auditLog.Append(audit.Record{
		SessionID:     ev.SessionID,
		TriggeredAt:   ev.when(),
		ToolCallCount: sess.ToolCallCount,
		Verdict:       res.Applied,
		Mode:          r.mode,
	}); err != nil {
		return gate.Decision{}, err
	}

	switch {
	case res.Block:
		return gate.Decision{
			Verdict:      gate.VerdictDeny,
			Blocked:      true,
			AdvisoryText: res.Advisory,
		}, nil
	case res.Failed:
		return gate.Decision{
			Verdict:       gate.VerdictDeny,
			AuditRequired: true,
			AdvisoryText:  res.Advisory,
		}, nil
	default:
		return gate.Decision{
			Verdict:      gate.VerdictAllow,
			AdvisoryText: res.Advisory,
		}, nil
	}
}

// auditAdvisory returns the instruction registered for the custodiet gate.
func (r *Router) auditAdvisory() string {
	if def, ok := r.registry.Lookup(gate.Custodiet); ok {
		return fmt.Sprintf("audit required: %s", def.Instruction)
	}
	return "audit required"
}

func appendAdvisory(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "\n" + extra
}
