// Package ports defines the contracts between the workflow core and its
// infrastructure: persistence, notification delivery and metrics.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order. The write is conditioned on the
	// version the order was loaded with; if another writer got there first the
	// update affects nothing and an errs.ConcurrentModificationError is returned.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. Returns errs.ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListOpen returns orders that have not reached COMPLETED, oldest first.
	ListOpen(ctx context.Context, limit int) ([]*order.Order, error)
}
