package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var (
	ErrGetOpenOrdersQueryIsNotConstructed = errors.New(
		"GetOpenOrdersQuery must be created via NewGetOpenOrdersQuery constructor",
	)
)

// GetOpenOrdersQuery lists the orders that have not reached COMPLETED, scoped to
// what the actor may see.
//
// Example:
//
//	query, _ := NewGetOpenOrdersQuery(buyer)
//	handler := NewGetOpenOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list orders: %w", err)
//	}
//	for _, o := range orders {
//	    fmt.Printf("Order %s is %s\n", o.ID, o.State)
//	}
type GetOpenOrdersQuery struct {
	actor kernel.Actor
	guard guard.ConstructorGuard
}

// NewGetOpenOrdersQuery creates a query to list open orders.
func NewGetOpenOrdersQuery(actor kernel.Actor) (GetOpenOrdersQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetOpenOrdersQuery{}, err
	}
	return GetOpenOrdersQuery{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOpenOrdersQueryIsNotConstructed if validation fails.
func (q GetOpenOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOpenOrdersQueryIsNotConstructed)
}

func (q GetOpenOrdersQuery) Actor() kernel.Actor {
	return q.actor
}

// GetOpenOrdersQueryResponse is one row of the open-orders listing.
type GetOpenOrdersQueryResponse struct {
	ID             kernel.UUID
	BuyerID        kernel.UUID
	ManufacturerID *kernel.UUID
	Title          string
	State          order.State
	DeliveryState  order.DeliveryState
	UpdatedAt      time.Time
}
