package audit

import (
	"fmt"
	"slices"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// ReplayResult is where a trail leaves an order.
type ReplayResult struct {
	State         order.State
	DeliveryState order.DeliveryState
	Transitions   int
	Overrides     int
	Denied        int
}

// Replay walks events in sequence order starting from DRAFT / NOT_STARTED. Every
// transition must start where the previous one ended and follow a graph edge.
// Manual overrides may jump anywhere. Denied events and attribute updates never move
// state.
func Replay(events []Event) (ReplayResult, error) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})

	res := ReplayResult{State: order.Draft, DeliveryState: order.NotStarted}
	for _, e := range sorted {
		switch e.Outcome {
		case OutcomeDenied:
			res.Denied++
		case OutcomeAttributeUpdate:
			continue
		case OutcomeManualOverride:
			if err := res.force(e); err != nil {
				return res, fmt.Errorf("audit event %d: %w", e.Seq, err)
			}
			res.Overrides++
		case OutcomeTransition:
			if e.From == "" {
				// creation
				continue
			}
			if err := res.walk(e); err != nil {
				return res, fmt.Errorf("audit event %d: %w", e.Seq, err)
			}
			res.Transitions++
		default:
			return res, fmt.Errorf("audit event %d: %w", e.Seq, errs.NewValueIsInvalidError("audit outcome"))
		}
	}
	return res, nil
}

func (r *ReplayResult) walk(e Event) error {
	switch e.Machine {
	case order.DeliveryMachine:
		from, to, err := parseDelivery(e)
		if err != nil {
			return err
		}
		if from != r.DeliveryState {
			return errs.NewInvalidTransitionError(string(e.Machine), r.DeliveryState.String(), e.From)
		}
		if _, ok := order.DeliveryGraph().Lookup(from, to); !ok {
			return errs.NewInvalidTransitionError(string(e.Machine), e.From, e.To)
		}
		r.DeliveryState = to
	default:
		from, to, err := parseOrder(e)
		if err != nil {
			return err
		}
		if from != r.State {
			return errs.NewInvalidTransitionError(string(e.Machine), r.State.String(), e.From)
		}
		if _, ok := order.OrderGraph().Lookup(from, to); !ok {
			return errs.NewInvalidTransitionError(string(e.Machine), e.From, e.To)
		}
		r.State = to
	}
	return nil
}

func (r *ReplayResult) force(e Event) error {
	if e.Machine == order.DeliveryMachine {
		to, err := order.ParseDeliveryState(e.To)
		if err != nil {
			return err
		}
		r.DeliveryState = to
		return nil
	}
	to, err := order.ParseState(e.To)
	if err != nil {
		return err
	}
	r.State = to
	return nil
}

func parseOrder(e Event) (order.State, order.State, error) {
	from, err := order.ParseState(e.From)
	if err != nil {
		return 0, 0, err
	}
	to, err := order.ParseState(e.To)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func parseDelivery(e Event) (order.DeliveryState, order.DeliveryState, error) {
	from, err := order.ParseDeliveryState(e.From)
	if err != nil {
		return 0, 0, err
	}
	to, err := order.ParseDeliveryState(e.To)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}
