package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrAssignManufacturerCommandIsNotConstructed = errors.New(
	"AssignManufacturerCommand must be created via NewAssignManufacturerCommand constructor",
)

// AssignManufacturerCommand assigns an approved order to a manufacturer.
type AssignManufacturerCommand struct { //nolint:recvcheck //using for validation
	transition     ApplyTransitionCommand
	manufacturerID kernel.UUID
	guard          guard.ConstructorGuard
}

func NewAssignManufacturerCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	manufacturerID kernel.UUID,
) (AssignManufacturerCommand, error) {
	if err := manufacturerID.Validate(); err != nil {
		return AssignManufacturerCommand{}, errs.NewValueIsRequiredErrorWithCause("manufacturer id", err)
	}
	tc, err := NewApplyTransitionCommand(orderID, actor, statePtr(order.ManufacturerAssigned), nil,
		order.Patch{ManufacturerID: &manufacturerID})
	if err != nil {
		return AssignManufacturerCommand{}, err
	}
	return AssignManufacturerCommand{
		transition:     tc,
		manufacturerID: manufacturerID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c AssignManufacturerCommand) Validate() error {
	return c.guard.Validate(ErrAssignManufacturerCommandIsNotConstructed)
}

func (c AssignManufacturerCommand) ManufacturerID() kernel.UUID {
	return c.manufacturerID
}

func (c AssignManufacturerCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
