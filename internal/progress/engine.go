package progress

import (
	"time"

	"github.com/google/uuid"
)

// Engine applies events to user records. It holds no state of its own beyond
// configuration, so one Engine can serve every user concurrently.
type Engine struct {
	Rules   Rules
	Catalog Catalog
	NewID   func() string
}

func NewEngine(rules Rules, catalog Catalog) *Engine {
	return &Engine{
		Rules:   rules.WithDefaults(),
		Catalog: catalog,
		NewID:   uuid.NewString,
	}
}

// Apply computes the next state for ev. On error the input state is returned unchanged
// and nothing should be persisted.
func (e *Engine) Apply(s UserState, ev Event, now time.Time) (UserState, Outcome, error) {
	next := s.Clone()
	var (
		out Outcome
		err error
	)

	switch ev := ev.(type) {
	case ToggleTask:
		out, err = e.toggleTask(&next, ev.TaskID, now)
	case DeleteTask:
		out, err = e.deleteTask(&next, ev.TaskID)
	case CreateTask:
		out, err = e.createTask(&next, ev, now)
	case EvaluateDeadline:
		out = e.evaluateDeadline(&next, now)
	case ReportBehavior:
		out, err = e.reportBehavior(&next, ev.ActionID)
	case PurchaseItem:
		out, err = e.purchaseItem(&next, ev.ItemID, now)
	case UseItem:
		out, err = e.useItem(&next, ev.ItemID)
	case DiscardItem:
		out, err = e.discardItem(&next, ev.ItemID)
	case SpendAttributePoint:
		out, err = e.spendAttributePoint(&next, ev.Attribute)
	case ResetProgress:
		next, out, err = e.resetProgress(ev.ActorIsAdmin)
	case nil:
		err = invalid("event is required")
	default:
		err = invalid("unsupported event %s", ev.Name())
	}

	if err != nil {
		return s, Outcome{}, err
	}
	return next, out, nil
}

func (e *Engine) resetProgress(actorIsAdmin bool) (UserState, Outcome, error) {
	if !actorIsAdmin {
		return UserState{}, Outcome{}, forbidden("only admins can reset progress")
	}
	var out Outcome
	out.note("Progress reset to defaults.")
	return DefaultUserState(e.Rules), out, nil
}
