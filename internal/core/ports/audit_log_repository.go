package ports

import (
	"context"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
)

// AuditLogRepository is append-only: it offers no update or delete.
type AuditLogRepository interface {
	// Append stores events in order. Storage assigns each event its sequence number.
	Append(ctx context.Context, events ...audit.Event) error

	// ListByOrder returns the trail of an order in sequence order.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]audit.Event, error)
}
