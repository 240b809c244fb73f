package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrMarkPaymentReceivedCommandIsNotConstructed = errors.New(
	"MarkPaymentReceivedCommand must be created via NewMarkPaymentReceivedCommand constructor",
)

// MarkPaymentReceivedCommand records the buyer's payment, locks escrow and confirms
// the order. It is issued by admins or by the payment webhook as the system actor.
type MarkPaymentReceivedCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	guard      guard.ConstructorGuard
}

func NewMarkPaymentReceivedCommand(orderID kernel.UUID, actor kernel.Actor) (MarkPaymentReceivedCommand, error) {
	tc, err := NewApplyTransitionCommand(orderID, actor, statePtr(order.PaymentConfirmed), nil,
		order.Patch{ConfirmPayment: true})
	if err != nil {
		return MarkPaymentReceivedCommand{}, err
	}
	return MarkPaymentReceivedCommand{transition: tc, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkPaymentReceivedCommand) Validate() error {
	return c.guard.Validate(ErrMarkPaymentReceivedCommandIsNotConstructed)
}

func (c MarkPaymentReceivedCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
