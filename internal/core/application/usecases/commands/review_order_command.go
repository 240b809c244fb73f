package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrReviewOrderCommandIsNotConstructed = errors.New(
	"ReviewOrderCommand must be created via NewReviewOrderCommand constructor",
)

// ReviewOrderCommand is the admin acceptance of a submitted order.
type ReviewOrderCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	guard      guard.ConstructorGuard
}

func NewReviewOrderCommand(orderID kernel.UUID, actor kernel.Actor) (ReviewOrderCommand, error) {
	tc, err := NewApplyTransitionCommand(orderID, actor, statePtr(order.AdminApproved), nil, order.Patch{})
	if err != nil {
		return ReviewOrderCommand{}, err
	}
	return ReviewOrderCommand{transition: tc, guard: guard.NewConstructorGuard()}, nil
}

func (c ReviewOrderCommand) Validate() error {
	return c.guard.Validate(ErrReviewOrderCommandIsNotConstructed)
}

func (c ReviewOrderCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
