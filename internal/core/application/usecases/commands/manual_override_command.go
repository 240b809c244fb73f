package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrManualOverrideCommandIsNotConstructed = errors.New(
	"ManualOverrideCommand must be created via NewManualOverrideCommand constructor",
)

// ManualOverrideCommand forces an order and/or its delivery into any state,
// bypassing the transition graphs. It exists for support staff repairing orders
// and always carries a written reason.
type ManualOverrideCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	actor          kernel.Actor
	targetState    *order.State
	targetDelivery *order.DeliveryState
	reason         string

	guard guard.ConstructorGuard
}

func NewManualOverrideCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	targetState *order.State,
	targetDelivery *order.DeliveryState,
	reason string,
) (ManualOverrideCommand, error) {
	cmd := ManualOverrideCommand{
		orderID: orderID,
		actor:   actor,
		reason:  strings.TrimSpace(reason),
		guard:   guard.NewConstructorGuard(),
	}

	var problems []error
	problems = append(problems, orderID.Validate(), actor.Validate())
	if targetState == nil && targetDelivery == nil {
		problems = append(problems, errs.NewValueIsRequiredError("override target state"))
	}
	if targetState != nil {
		problems = append(problems, targetState.Validate())
		cmd.targetState = statePtr(*targetState)
	}
	if targetDelivery != nil {
		problems = append(problems, targetDelivery.Validate())
		cmd.targetDelivery = deliveryPtr(*targetDelivery)
	}
	if err := errors.Join(problems...); err != nil {
		return ManualOverrideCommand{}, err
	}

	return cmd, nil
}

func (c ManualOverrideCommand) Validate() error {
	return c.guard.Validate(ErrManualOverrideCommandIsNotConstructed)
}

func (c ManualOverrideCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ManualOverrideCommand) Actor() kernel.Actor {
	return c.actor
}

func (c ManualOverrideCommand) TargetState() *order.State {
	return c.targetState
}

func (c ManualOverrideCommand) TargetDelivery() *order.DeliveryState {
	return c.targetDelivery
}

func (c ManualOverrideCommand) Reason() string {
	return c.reason
}
