package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrRequestRevisionCommandIsNotConstructed = errors.New(
	"RequestRevisionCommand must be created via NewRequestRevisionCommand constructor",
)

// RequestRevisionCommand leaves notes asking the buyer to revise a submitted order.
// The notes are cleared when the order is approved for payment.
type RequestRevisionCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	guard      guard.ConstructorGuard
}

func NewRequestRevisionCommand(orderID kernel.UUID, actor kernel.Actor, notes string) (RequestRevisionCommand, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return RequestRevisionCommand{}, errs.NewValueIsRequiredError("rejection notes")
	}
	tc, err := NewApplyTransitionCommand(orderID, actor, nil, nil, order.Patch{RejectionNotes: &notes})
	if err != nil {
		return RequestRevisionCommand{}, err
	}
	return RequestRevisionCommand{transition: tc, guard: guard.NewConstructorGuard()}, nil
}

func (c RequestRevisionCommand) Validate() error {
	return c.guard.Validate(ErrRequestRevisionCommandIsNotConstructed)
}

func (c RequestRevisionCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
