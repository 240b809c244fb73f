package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrApproveOrderCommandIsNotConstructed = errors.New(
	"ApproveOrderCommand must be created via NewApproveOrderCommand constructor",
)

// ApproveOrderCommand sends the buyer a payment link for an order with an assigned
// manufacturer. Previous revision notes are cleared.
//
// Example:
//
//	cmd, err := NewApproveOrderCommand(orderID, admin, "https://pay.example.com/inv/42")
//	if errs.KindOf(err) == errs.KindInvalidInput {
//	    // no transition was attempted
//	}
type ApproveOrderCommand struct { //nolint:recvcheck //using for validation
	transition  ApplyTransitionCommand
	paymentLink string
	guard       guard.ConstructorGuard
}

// NewApproveOrderCommand rejects anything but an absolute http(s) URL before a
// transition is attempted.
func NewApproveOrderCommand(orderID kernel.UUID, actor kernel.Actor, paymentLink string) (ApproveOrderCommand, error) {
	paymentLink = strings.TrimSpace(paymentLink)
	if err := order.ValidatePaymentLink(paymentLink); err != nil {
		return ApproveOrderCommand{}, err
	}
	tc, err := NewApplyTransitionCommand(orderID, actor, statePtr(order.PaymentRequested), nil,
		order.Patch{PaymentLink: &paymentLink, ClearRejectionNotes: true})
	if err != nil {
		return ApproveOrderCommand{}, err
	}
	return ApproveOrderCommand{transition: tc, paymentLink: paymentLink, guard: guard.NewConstructorGuard()}, nil
}

func (c ApproveOrderCommand) Validate() error {
	return c.guard.Validate(ErrApproveOrderCommandIsNotConstructed)
}

func (c ApproveOrderCommand) PaymentLink() string {
	return c.paymentLink
}

func (c ApproveOrderCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
