package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/services"
)

// GetOrderViewQueryHandler projects an order for the requesting actor's role.
type GetOrderViewQueryHandler struct {
	orders    OrderReader
	projector services.OrderProjector
}

func NewGetOrderViewQueryHandler(orders OrderReader, now func() time.Time) GetOrderViewQueryHandler {
	return GetOrderViewQueryHandler{orders: orders, projector: services.NewOrderProjector(now)}
}

func (h GetOrderViewQueryHandler) Handle(ctx context.Context, query GetOrderViewQuery) (services.OrderView, error) {
	if err := query.Validate(); err != nil {
		return services.OrderView{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return services.OrderView{}, err
	}
	if err = canSee(query.Actor(), o); err != nil {
		return services.OrderView{}, err
	}

	return h.projector.View(o, query.Actor().Role()), nil
}
