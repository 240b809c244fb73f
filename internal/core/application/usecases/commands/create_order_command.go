package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a buyer drafting a new order.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), buyer, "Hoodie run", 500, "s3://designs/a.pdf")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, logger, time.Now)
//	res, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	actor         kernel.Actor
	title         string
	quantity      int
	designFileRef string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the order id, the actor, the title and that the
// quantity is positive. The design file may be attached later, before submission.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	title string,
	quantity int,
	designFileRef string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		actor:         actor,
		designFileRef: strings.TrimSpace(designFileRef),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		actor.Validate(),
		cmd.setTitle(title),
		cmd.setQuantity(quantity),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CreateOrderCommand) Title() string {
	return c.title
}

func (c CreateOrderCommand) Quantity() int {
	return c.quantity
}

func (c CreateOrderCommand) DesignFileRef() string {
	return c.designFileRef
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errs.NewValueIsRequiredError("title")
	}

	c.title = title
	return nil
}

func (c *CreateOrderCommand) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}

	c.quantity = quantity
	return nil
}
