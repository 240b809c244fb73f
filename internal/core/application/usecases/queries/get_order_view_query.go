package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderViewQueryIsNotConstructed = errors.New(
	"GetOrderViewQuery must be created via NewGetOrderViewQuery constructor",
)

// GetOrderViewQuery asks for the role-specific view of one order.
type GetOrderViewQuery struct {
	orderID kernel.UUID
	actor   kernel.Actor
	guard   guard.ConstructorGuard
}

func NewGetOrderViewQuery(orderID kernel.UUID, actor kernel.Actor) (GetOrderViewQuery, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return GetOrderViewQuery{}, err
	}
	return GetOrderViewQuery{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderViewQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderViewQueryIsNotConstructed)
}

func (q GetOrderViewQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetOrderViewQuery) Actor() kernel.Actor {
	return q.actor
}
