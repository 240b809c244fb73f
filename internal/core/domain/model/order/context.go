package order

import "orderflow/internal/core/domain/model/kernel"

// Context is the post-patch view of an order that preconditions are evaluated
// against: each value is the one the patch supplies, or the stored one otherwise.
// QC video references are the exception: every QC round needs fresh evidence, so
// they only come from the patch.
type Context struct {
	BuyerID           kernel.UUID
	ManufacturerID    *kernel.UUID
	State             State
	DeliveryState     DeliveryState
	Quantity          int
	DesignFileRef     string
	PaymentLink       string
	PaymentReceived   bool
	SpecsLocked       bool
	SampleQCVideoRef  string
	BulkQCVideoRef    string
	PackagingVideoRef string
	CourierName       string
	TrackingID        string

	// RejectionReason and Feedback only come from the patch. A reason stored by an
	// earlier round never satisfies a new rejection.
	RejectionReason string
	Feedback        *QCFeedback
}

// Context merges patch over the stored attributes. State and DeliveryState are the
// targets when given, so coupling checks see the combined result.
func (o *Order) Context(patch Patch, targetState *State, targetDelivery *DeliveryState) Context {
	c := Context{
		BuyerID:           o.buyerID,
		ManufacturerID:    o.manufacturerID,
		State:             o.state,
		DeliveryState:     o.deliveryState,
		Quantity:          o.quantity,
		DesignFileRef:     o.designFileRef,
		PaymentLink:       o.paymentLink,
		PaymentReceived:   o.paymentReceived || patch.ConfirmPayment,
		SpecsLocked:       o.specsLocked || patch.LockSpecs,
		PackagingVideoRef: o.packagingVideoRef,
		CourierName:       o.courierName,
		TrackingID:        o.trackingID,
	}
	if targetState != nil {
		c.State = *targetState
	}
	if targetDelivery != nil {
		c.DeliveryState = *targetDelivery
	}
	if patch.ManufacturerID != nil {
		id := *patch.ManufacturerID
		c.ManufacturerID = &id
	}
	override(&c.DesignFileRef, patch.DesignFileRef)
	override(&c.PaymentLink, patch.PaymentLink)
	override(&c.PackagingVideoRef, patch.PackagingVideoRef)
	override(&c.CourierName, patch.CourierName)
	override(&c.TrackingID, patch.TrackingID)
	if v := patch.QCVideo; v != nil {
		switch v.Stage {
		case SampleStage:
			c.SampleQCVideoRef = v.Ref
		case BulkStage:
			c.BulkQCVideoRef = v.Ref
		}
	}
	if r := patch.QCReview; r != nil {
		c.RejectionReason = r.Reason
		c.Feedback = r.Feedback
	}
	return c
}

func override(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
