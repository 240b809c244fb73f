package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrSchedulePickupCommandIsNotConstructed = errors.New(
	"SchedulePickupCommand must be created via NewSchedulePickupCommand constructor",
)

// SchedulePickupCommand books the courier for a packed order. Blank courier details
// fall back to what the order already stores; the pickup is refused if either is
// still missing.
type SchedulePickupCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	guard      guard.ConstructorGuard
}

func NewSchedulePickupCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	courierName, trackingID string,
) (SchedulePickupCommand, error) {
	tc, err := NewApplyTransitionCommand(orderID, actor, nil, deliveryPtr(order.PickupScheduled),
		order.Patch{CourierName: optional(courierName), TrackingID: optional(trackingID)})
	if err != nil {
		return SchedulePickupCommand{}, err
	}
	return SchedulePickupCommand{transition: tc, guard: guard.NewConstructorGuard()}, nil
}

func (c SchedulePickupCommand) Validate() error {
	return c.guard.Validate(ErrSchedulePickupCommandIsNotConstructed)
}

func (c SchedulePickupCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
