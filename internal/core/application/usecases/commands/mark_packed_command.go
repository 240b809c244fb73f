package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrMarkPackedCommandIsNotConstructed = errors.New(
	"MarkPackedCommand must be created via NewMarkPackedCommand constructor",
)

// MarkPackedCommand marks the goods of a dispatch-eligible order as packed.
// packagingVideoRef may be empty when the video was uploaded earlier.
type MarkPackedCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	guard      guard.ConstructorGuard
}

func NewMarkPackedCommand(orderID kernel.UUID, actor kernel.Actor, packagingVideoRef string) (MarkPackedCommand, error) {
	tc, err := NewApplyTransitionCommand(orderID, actor, nil, deliveryPtr(order.Packed),
		order.Patch{PackagingVideoRef: optional(packagingVideoRef)})
	if err != nil {
		return MarkPackedCommand{}, err
	}
	return MarkPackedCommand{transition: tc, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkPackedCommand) Validate() error {
	return c.guard.Validate(ErrMarkPackedCommandIsNotConstructed)
}

func (c MarkPackedCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
