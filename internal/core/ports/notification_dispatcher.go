package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// NotificationType identifies the template a notification service renders.
type NotificationType string

const (
	NotificationOrderAssigned     NotificationType = "order_assigned"
	NotificationPaymentRequested  NotificationType = "payment_requested"
	NotificationQCReadyForReview  NotificationType = "qc_ready_for_review"
	NotificationQCRejected        NotificationType = "qc_rejected"
	NotificationShipmentScheduled NotificationType = "shipment_scheduled"
	NotificationOrderDelivered    NotificationType = "order_delivered"
)

// Notification is an intent to tell a user about an order.
type Notification struct {
	UserID  kernel.UUID
	OrderID kernel.UUID
	Type    NotificationType
	Title   string
	Message string
}

// NotificationDispatcher hands notifications to an external collaborator.
// Delivery is fire-and-forget: a failure is logged by the caller and never undoes
// the transition that produced the notification. Implementations should return once
// the notification is queued rather than wait for delivery.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}
