package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrSubmitOrderCommandIsNotConstructed = errors.New(
	"SubmitOrderCommand must be created via NewSubmitOrderCommand constructor",
)

// SubmitOrderCommand moves a DRAFT order to SUBMITTED. designFileRef may be empty
// when the draft already carries one.
type SubmitOrderCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	guard      guard.ConstructorGuard
}

func NewSubmitOrderCommand(orderID kernel.UUID, actor kernel.Actor, designFileRef string) (SubmitOrderCommand, error) {
	tc, err := NewApplyTransitionCommand(orderID, actor, statePtr(order.Submitted), nil,
		order.Patch{DesignFileRef: optional(designFileRef)})
	if err != nil {
		return SubmitOrderCommand{}, err
	}
	return SubmitOrderCommand{transition: tc, guard: guard.NewConstructorGuard()}, nil
}

func (c SubmitOrderCommand) Validate() error {
	return c.guard.Validate(ErrSubmitOrderCommandIsNotConstructed)
}

func (c SubmitOrderCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
