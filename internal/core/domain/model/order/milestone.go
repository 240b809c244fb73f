package order

// Milestone names a lifecycle timestamp. Each is written once, when the transition it
// belongs to commits, and is the replayable source for delay metrics.
type Milestone string

const (
	MilestoneSubmitted         Milestone = "submitted_at"
	MilestoneApproved          Milestone = "approved_at"
	MilestoneAssigned          Milestone = "assigned_at"
	MilestonePaymentRequested  Milestone = "payment_requested_at"
	MilestoneEscrowLocked      Milestone = "escrow_locked_at"
	MilestoneSampleStarted     Milestone = "sample_started_at"
	MilestoneSampleQCUploaded  Milestone = "sample_qc_uploaded_at"
	MilestoneSampleApproved    Milestone = "sample_approved_at"
	MilestoneBulkUnlocked      Milestone = "bulk_unlocked_at"
	MilestoneBulkStarted       Milestone = "bulk_started_at"
	MilestoneBulkQCUploaded    Milestone = "bulk_qc_uploaded_at"
	MilestoneReadyForDispatch  Milestone = "ready_for_dispatch_at"
	MilestoneDispatched        Milestone = "dispatched_at"
	MilestoneDelivered         Milestone = "delivered_at"
	MilestoneCompleted         Milestone = "completed_at"
	MilestonePacked            Milestone = "packed_at"
	MilestonePickupScheduled   Milestone = "pickup_scheduled_at"
	MilestoneInTransit         Milestone = "in_transit_at"
	MilestoneDeliveryCompleted Milestone = "delivery_delivered_at"
	MilestoneSpecsLocked       Milestone = "specs_locked_at"
)

// MilestoneForState returns the milestone stamped when an order enters s.
// Draft has none.
func MilestoneForState(s State) (Milestone, bool) {
	m, ok := map[State]Milestone{
		Submitted:            MilestoneSubmitted,
		AdminApproved:        MilestoneApproved,
		ManufacturerAssigned: MilestoneAssigned,
		PaymentRequested:     MilestonePaymentRequested,
		PaymentConfirmed:     MilestoneEscrowLocked,
		SampleInProgress:     MilestoneSampleStarted,
		SampleQCUploaded:     MilestoneSampleQCUploaded,
		SampleApproved:       MilestoneSampleApproved,
		BulkUnlocked:         MilestoneBulkUnlocked,
		BulkInProduction:     MilestoneBulkStarted,
		BulkQCUploaded:       MilestoneBulkQCUploaded,
		ReadyForDispatch:     MilestoneReadyForDispatch,
		Dispatched:           MilestoneDispatched,
		Delivered:            MilestoneDelivered,
		Completed:            MilestoneCompleted,
	}[s]
	return m, ok
}

// MilestoneForDeliveryState returns the milestone stamped when delivery enters s.
func MilestoneForDeliveryState(s DeliveryState) (Milestone, bool) {
	m, ok := map[DeliveryState]Milestone{
		Packed:            MilestonePacked,
		PickupScheduled:   MilestonePickupScheduled,
		InTransit:         MilestoneInTransit,
		DeliveryDelivered: MilestoneDeliveryCompleted,
	}[s]
	return m, ok
}
