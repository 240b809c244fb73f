package commands

import (
	"errors"
	"maps"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrApplyTransitionCommandIsNotConstructed = errors.New(
	"ApplyTransitionCommand must be created via NewApplyTransitionCommand constructor",
)

// ApplyTransitionCommand asks the orchestrator to move an order and/or its delivery,
// applying patch alongside. With no target it is an attribute-only update.
//
// Example:
//
//	target := order.BulkUnlocked
//	cmd, err := NewApplyTransitionCommand(orderID, kernel.SystemActor(), &target, nil, order.Patch{})
//	if err != nil {
//	    return err
//	}
//	res, err := handler.Handle(ctx, cmd)
type ApplyTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	actor          kernel.Actor
	targetState    *order.State
	targetDelivery *order.DeliveryState
	patch          order.Patch
	metadata       map[string]string

	guard guard.ConstructorGuard
}

// NewApplyTransitionCommand validates ids, targets and the shape of the patch.
func NewApplyTransitionCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	targetState *order.State,
	targetDelivery *order.DeliveryState,
	patch order.Patch,
) (ApplyTransitionCommand, error) {
	cmd := ApplyTransitionCommand{
		actor:    actor,
		patch:    patch,
		metadata: map[string]string{},
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		actor.Validate(),
		cmd.setTargetState(targetState),
		cmd.setTargetDelivery(targetDelivery),
		patch.Validate(),
	); err != nil {
		return ApplyTransitionCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyTransitionCommand) Validate() error {
	return c.guard.Validate(ErrApplyTransitionCommandIsNotConstructed)
}

// WithMetadata returns a copy carrying an extra audit metadata entry.
func (c ApplyTransitionCommand) WithMetadata(key, value string) ApplyTransitionCommand {
	c.metadata = maps.Clone(c.metadata)
	if c.metadata == nil {
		c.metadata = map[string]string{}
	}
	c.metadata[key] = value
	return c
}

func (c ApplyTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ApplyTransitionCommand) Actor() kernel.Actor {
	return c.actor
}

// TargetState returns nil when the order state is not to move.
func (c ApplyTransitionCommand) TargetState() *order.State {
	return c.targetState
}

// TargetDelivery returns nil when the delivery state is not to move.
func (c ApplyTransitionCommand) TargetDelivery() *order.DeliveryState {
	return c.targetDelivery
}

func (c ApplyTransitionCommand) Patch() order.Patch {
	return c.patch
}

func (c ApplyTransitionCommand) Metadata() map[string]string {
	return maps.Clone(c.metadata)
}

func (c *ApplyTransitionCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *ApplyTransitionCommand) setTargetState(s *order.State) error {
	if s == nil {
		return nil
	}
	if err := s.Validate(); err != nil {
		return err
	}
	v := *s
	c.targetState = &v
	return nil
}

func (c *ApplyTransitionCommand) setTargetDelivery(s *order.DeliveryState) error {
	if s == nil {
		return nil
	}
	if err := s.Validate(); err != nil {
		return err
	}
	v := *s
	c.targetDelivery = &v
	return nil
}

func statePtr(s order.State) *order.State {
	return &s
}

func deliveryPtr(s order.DeliveryState) *order.DeliveryState {
	return &s
}

// optional returns nil for blank strings so that stored values stay in effect.
func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
