package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// Notifications derives the notification intents of a committed change.
func Notifications(before order.Snapshot, o *order.Order) []ports.Notification {
	var out []ports.Notification
	toBuyer := func(t ports.NotificationType, title, msg string) {
		out = append(out, ports.Notification{UserID: o.BuyerID(), OrderID: o.ID(), Type: t, Title: title, Message: msg})
	}
	toManufacturer := func(t ports.NotificationType, title, msg string) {
		if m := o.ManufacturerID(); m != nil {
			out = append(out, ports.Notification{UserID: *m, OrderID: o.ID(), Type: t, Title: title, Message: msg})
		}
	}

	if before.State != o.State() {
		switch {
		case o.State() == order.ManufacturerAssigned:
			toManufacturer(ports.NotificationOrderAssigned, "New order assigned",
				fmt.Sprintf("Order %q (%d units) has been assigned to you.", o.Title(), o.Quantity()))
		case o.State() == order.PaymentRequested:
			toBuyer(ports.NotificationPaymentRequested, "Payment requested",
				fmt.Sprintf("Your order %q is approved. Complete payment at %s to start production.", o.Title(), o.PaymentLink()))
		case o.State() == order.SampleQCUploaded, o.State() == order.BulkQCUploaded:
			stage, _ := order.QCStageOf(before.State, o.State())
			toBuyer(ports.NotificationQCReadyForReview, "QC ready for review",
				fmt.Sprintf("The %s QC video for %q is ready for your review.", stage, o.Title()))
		case order.IsQCRejection(before.State, o.State()):
			stage, _ := order.QCStageOf(before.State, o.State())
			toManufacturer(ports.NotificationQCRejected, "QC rejected",
				fmt.Sprintf("The %s QC for %q was rejected: %s", stage, o.Title(), o.QC(stage).Reason))
		case o.State() == order.Delivered:
			toBuyer(ports.NotificationOrderDelivered, "Order delivered",
				fmt.Sprintf("Your order %q has been delivered.", o.Title()))
		}
	}
	if before.DeliveryState != o.DeliveryState() && o.DeliveryState() == order.PickupScheduled {
		toBuyer(ports.NotificationShipmentScheduled, "Shipment scheduled",
			fmt.Sprintf("Your order %q will be picked up by %s, tracking id %s.", o.Title(), o.CourierName(), o.TrackingID()))
	}
	return out
}

// NotificationTimeout bounds the time a committed change spends handing its
// notifications to the dispatcher.
const NotificationTimeout = 2 * time.Second

// dispatchAll hands notifications over on a context detached from the request, so a
// client that disconnects after the commit does not drop them.
func dispatchAll(
	ctx context.Context,
	notifier ports.NotificationDispatcher,
	metrics ports.WorkflowMetrics,
	logger *slog.Logger,
	notifications []ports.Notification,
) {
	if len(notifications) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotificationTimeout)
	defer cancel()

	for _, n := range notifications {
		if err := notifier.Dispatch(ctx, n); err != nil {
			metrics.NotificationFailed()
			logger.WarnContext(ctx, "notification dispatch failed",
				"order_id", n.OrderID.String(), "type", string(n.Type), "error", err)
		}
	}
}
