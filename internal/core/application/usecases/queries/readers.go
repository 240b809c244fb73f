// Package queries contains the read-side use cases. Queries never mutate orders.
package queries

import (
	"context"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

type (
	// OrderReader loads order aggregates outside of a unit of work.
	OrderReader interface {
		Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
		ListOpen(ctx context.Context, limit int) ([]*order.Order, error)
	}

	// AuditReader loads audit trails.
	AuditReader interface {
		ListByOrder(ctx context.Context, orderID kernel.UUID) ([]audit.Event, error)
	}
)

// canSee reports whether actor may read o: buyers their own orders, manufacturers
// the orders assigned to them, admins and system actors everything.
func canSee(actor kernel.Actor, o *order.Order) error {
	switch actor.Role() {
	case kernel.RoleAdmin, kernel.RoleSystem:
		return nil
	case kernel.RoleBuyer:
		if actor.Is(o.BuyerID()) {
			return nil
		}
	case kernel.RoleManufacturer:
		if m := o.ManufacturerID(); m != nil && actor.Is(*m) {
			return nil
		}
	}
	return errs.NewUnauthorizedActorError(actor.Role().String(), actor.IDString(), "view order", nil)
}
