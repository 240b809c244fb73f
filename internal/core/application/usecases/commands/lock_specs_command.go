package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrLockSpecsCommandIsNotConstructed = errors.New(
	"LockSpecsCommand must be created via NewLockSpecsCommand constructor",
)

// LockSpecsCommand freezes the order's specifications. It moves no state.
type LockSpecsCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	guard      guard.ConstructorGuard
}

func NewLockSpecsCommand(orderID kernel.UUID, actor kernel.Actor) (LockSpecsCommand, error) {
	tc, err := NewApplyTransitionCommand(orderID, actor, nil, nil, order.Patch{LockSpecs: true})
	if err != nil {
		return LockSpecsCommand{}, err
	}
	return LockSpecsCommand{transition: tc, guard: guard.NewConstructorGuard()}, nil
}

func (c LockSpecsCommand) Validate() error {
	return c.guard.Validate(ErrLockSpecsCommandIsNotConstructed)
}

func (c LockSpecsCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
