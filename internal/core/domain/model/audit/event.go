package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// Outcome classifies an audit event.
type Outcome string

const (
	OutcomeTransition      Outcome = "transition"
	OutcomeDenied          Outcome = "denied"
	OutcomeManualOverride  Outcome = "manual_override"
	OutcomeAttributeUpdate Outcome = "attribute_update"
)

func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	switch o {
	case OutcomeTransition, OutcomeDenied, OutcomeManualOverride, OutcomeAttributeUpdate:
		return o, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("audit outcome", fmt.Errorf("%q is not a known outcome", s))
	}
}

// Event is one audit row. Seq is assigned by storage and orders the trail. From is
// empty for the event that records an order's creation.
type Event struct {
	Seq           int64
	OrderID       kernel.UUID
	ActorRole     kernel.Role
	ActorID       *kernel.UUID
	Outcome       Outcome
	Machine       order.Machine
	From          string
	To            string
	ChangedFields []string
	Before        map[string]any
	After         map[string]any
	Reason        string
	Metadata      map[string]string
	CreatedAt     time.Time
}

// Validate checks that the event can be appended.
func (e Event) Validate() error {
	var problems []error
	problems = append(problems, e.OrderID.Validate(), e.ActorRole.Validate())
	if _, err := ParseOutcome(string(e.Outcome)); err != nil {
		problems = append(problems, err)
	}
	if e.Machine != order.OrderMachine && e.Machine != order.DeliveryMachine {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("audit machine",
			fmt.Errorf("%q is not order or delivery", string(e.Machine))))
	}
	if strings.TrimSpace(e.To) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("audit target state"))
	}
	if e.CreatedAt.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("audit timestamp"))
	}
	if e.Outcome == OutcomeManualOverride {
		if err := order.ValidateReason("override reason", e.Reason); err != nil {
			problems = append(problems, err)
		}
	}
	return errors.Join(problems...)
}

// NewCreatedEvent records the creation of an order in DRAFT.
func NewCreatedEvent(o *order.Order, actor kernel.Actor, at time.Time) Event {
	return Event{
		OrderID:   o.ID(),
		ActorRole: actor.Role(),
		ActorID:   actor.ID(),
		Outcome:   OutcomeTransition,
		Machine:   order.OrderMachine,
		To:        o.State().String(),
		After:     map[string]any{"state": o.State().String(), "delivery_state": o.DeliveryState().String()},
		CreatedAt: at.UTC(),
	}
}

// NewChangeEvents records a committed change. A move of each machine gets its own
// event; the field diff is attached to the first one. When nothing moved the change
// is recorded as an attribute update of the order machine.
func NewChangeEvents(
	orderID kernel.UUID,
	actor kernel.Actor,
	outcome Outcome,
	before, after order.Snapshot,
	changes order.Changes,
	reason string,
	metadata map[string]string,
	at time.Time,
) []Event {
	base := Event{
		OrderID:   orderID,
		ActorRole: actor.Role(),
		ActorID:   actor.ID(),
		Outcome:   outcome,
		Reason:    reason,
		Metadata:  metadata,
		CreatedAt: at.UTC(),
	}

	var events []Event
	if before.State != after.State || (before.DeliveryState == after.DeliveryState) {
		e := base
		e.Machine = order.OrderMachine
		e.From = before.State.String()
		e.To = after.State.String()
		if outcome == OutcomeTransition && before.State == after.State {
			e.Outcome = OutcomeAttributeUpdate
		}
		events = append(events, e)
	}
	if before.DeliveryState != after.DeliveryState {
		e := base
		e.Machine = order.DeliveryMachine
		e.From = before.DeliveryState.String()
		e.To = after.DeliveryState.String()
		events = append(events, e)
	}

	events[0].ChangedFields = changes.Fields
	events[0].Before = changes.Before
	events[0].After = changes.After
	return events
}

// NewDeniedEvent records a refused attempt. err is the structured error returned to
// the caller; its message becomes the reason.
func NewDeniedEvent(
	orderID kernel.UUID,
	actor kernel.Actor,
	machine order.Machine,
	from, to string,
	err error,
	metadata map[string]string,
	at time.Time,
) Event {
	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["error_kind"] = string(errs.KindOf(err))
	return Event{
		OrderID:   orderID,
		ActorRole: actor.Role(),
		ActorID:   actor.ID(),
		Outcome:   OutcomeDenied,
		Machine:   machine,
		From:      from,
		To:        to,
		Reason:    err.Error(),
		Metadata:  meta,
		CreatedAt: at.UTC(),
	}
}
