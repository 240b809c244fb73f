package order

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
)

const maxTitleLength = 200

// Order is the aggregate root of the manufacturing workflow. It owns the primary
// lifecycle state, the delivery sub-state, QC records, evidence references and
// milestone timestamps.
//
// Order follows these invariants:
//   - State and delivery state only move along edges of OrderGraph and DeliveryGraph,
//     except through Override
//   - Production stages are never entered while payment has not been received
//   - Delivery is packed only while the order is READY_FOR_DISPATCH or BULK_QC_UPLOADED
//   - A QC rejection carries a reason of at least MinReasonLength characters
//   - Milestones are written once; only Override may overwrite them
//
// Roles and preconditions are checked by the transition validator before Transition
// is called. Order re-checks the structural invariants only.
type Order struct {
	id                kernel.UUID
	buyerID           kernel.UUID
	title             string
	quantity          int
	state             State
	deliveryState     DeliveryState
	manufacturerID    *kernel.UUID
	paymentLink       string
	paymentReceived   bool
	specsLocked       bool
	rejectionNotes    string
	designFileRef     string
	packagingVideoRef string
	courierName       string
	trackingID        string
	sampleQC          QCRecord
	bulkQC            QCRecord
	milestones        map[Milestone]time.Time
	createdAt         time.Time
	updatedAt         time.Time

	// version is what will be persisted; loadedVersion is what was read.
	version       int64
	loadedVersion int64

	isConstructed bool
}

// Snapshot is the full state of an order. It is the shape used to restore an order
// from persistence and to compute audit diffs.
type Snapshot struct {
	ID                kernel.UUID
	BuyerID           kernel.UUID
	Title             string
	Quantity          int
	State             State
	DeliveryState     DeliveryState
	ManufacturerID    *kernel.UUID
	PaymentLink       string
	PaymentReceived   bool
	SpecsLocked       bool
	RejectionNotes    string
	DesignFileRef     string
	PackagingVideoRef string
	CourierName       string
	TrackingID        string
	SampleQC          QCRecord
	BulkQC            QCRecord
	Milestones        map[Milestone]time.Time
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Change is one requested mutation: an optional move of either machine plus a patch.
type Change struct {
	TargetState    *State
	TargetDelivery *DeliveryState
	Patch          Patch
	Actor          kernel.Actor
}

// NewOrder creates a DRAFT order owned by buyerID with delivery NOT_STARTED.
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), buyerID, "Hoodie run", 500, "s3://designs/a.pdf", time.Now())
//	if err != nil {
//	    // Handle validation error
//	}
//
// designFileRef may be empty; it is required before the order can be submitted.
func NewOrder(id, buyerID kernel.UUID, title string, quantity int, designFileRef string, at time.Time) (*Order, error) {
	o := &Order{
		state:         Draft,
		deliveryState: NotStarted,
		sampleQC:      NewQCRecord(),
		bulkQC:        NewQCRecord(),
		milestones:    map[Milestone]time.Time{},
		createdAt:     at.UTC(),
		updatedAt:     at.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setBuyerID(buyerID),
		o.setTitle(title),
		o.setQuantity(quantity),
	); err != nil {
		return nil, err
	}
	o.designFileRef = strings.TrimSpace(designFileRef)

	return o, nil
}

// RestoreOrder rebuilds an order from a snapshot, typically loaded from storage.
// Graph invariants are not re-checked because a manual override may legitimately
// have produced any combination of states.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		title:             s.Title,
		state:             s.State,
		deliveryState:     s.DeliveryState,
		paymentLink:       s.PaymentLink,
		paymentReceived:   s.PaymentReceived,
		specsLocked:       s.SpecsLocked,
		rejectionNotes:    s.RejectionNotes,
		designFileRef:     s.DesignFileRef,
		packagingVideoRef: s.PackagingVideoRef,
		courierName:       s.CourierName,
		trackingID:        s.TrackingID,
		sampleQC:          s.SampleQC,
		bulkQC:            s.BulkQC,
		milestones:        maps.Clone(s.Milestones),
		version:           s.Version,
		loadedVersion:     s.Version,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		isConstructed:     true,
	}
	if o.milestones == nil {
		o.milestones = map[Milestone]time.Time{}
	}
	if o.sampleQC.Decision == "" {
		o.sampleQC.Decision = QCPending
	}
	if o.bulkQC.Decision == "" {
		o.bulkQC.Decision = QCPending
	}

	var versionErr error
	if s.Version < 0 {
		versionErr = errs.NewValueIsOutOfRangeError("version", s.Version, 0, "unbounded")
	}
	var manufacturerErr error
	if s.ManufacturerID != nil {
		id := *s.ManufacturerID
		manufacturerErr = id.Validate()
		o.manufacturerID = &id
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setBuyerID(s.BuyerID),
		o.setQuantity(s.Quantity),
		s.State.Validate(),
		s.DeliveryState.Validate(),
		manufacturerErr,
		o.sampleQC.Validate(),
		o.bulkQC.Validate(),
		versionErr,
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) BuyerID() kernel.UUID {
	return o.buyerID
}

func (o *Order) Title() string {
	return o.title
}

func (o *Order) Quantity() int {
	return o.quantity
}

func (o *Order) State() State {
	return o.state
}

func (o *Order) DeliveryState() DeliveryState {
	return o.deliveryState
}

func (o *Order) PaymentLink() string {
	return o.paymentLink
}

func (o *Order) PaymentReceived() bool {
	return o.paymentReceived
}

func (o *Order) SpecsLocked() bool {
	return o.specsLocked
}

func (o *Order) RejectionNotes() string {
	return o.rejectionNotes
}

func (o *Order) DesignFileRef() string {
	return o.designFileRef
}

func (o *Order) PackagingVideoRef() string {
	return o.packagingVideoRef
}

func (o *Order) CourierName() string {
	return o.courierName
}

func (o *Order) TrackingID() string {
	return o.trackingID
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) Version() int64 {
	return o.version
}

// ExpectedVersion is the version the order was loaded with. Repositories condition
// updates on it.
func (o *Order) ExpectedVersion() int64 {
	return o.loadedVersion
}

// IsDirty reports whether anything changed since the order was loaded.
func (o *Order) IsDirty() bool {
	return o.version != o.loadedVersion
}

func (o *Order) Milestones() map[Milestone]time.Time {
	return maps.Clone(o.milestones)
}

// ManufacturerID returns nil until a manufacturer is assigned.
func (o *Order) ManufacturerID() *kernel.UUID {
	if o.manufacturerID == nil {
		return nil
	}
	id := *o.manufacturerID
	return &id
}

// QC returns a copy of the record of the given stage.
func (o *Order) QC(stage QCStage) QCRecord {
	if stage == BulkStage {
		return o.bulkQC
	}
	return o.sampleQC
}

// Milestone returns the timestamp of m and whether it has been written.
func (o *Order) Milestone(m Milestone) (time.Time, bool) {
	t, ok := o.milestones[m]
	return t, ok
}

// Snapshot returns a deep copy of the order's state.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                o.id,
		BuyerID:           o.buyerID,
		Title:             o.title,
		Quantity:          o.quantity,
		State:             o.state,
		DeliveryState:     o.deliveryState,
		ManufacturerID:    o.ManufacturerID(),
		PaymentLink:       o.paymentLink,
		PaymentReceived:   o.paymentReceived,
		SpecsLocked:       o.specsLocked,
		RejectionNotes:    o.rejectionNotes,
		DesignFileRef:     o.designFileRef,
		PackagingVideoRef: o.packagingVideoRef,
		CourierName:       o.courierName,
		TrackingID:        o.trackingID,
		SampleQC:          copyQC(o.sampleQC),
		BulkQC:            copyQC(o.bulkQC),
		Milestones:        maps.Clone(o.milestones),
		Version:           o.version,
		CreatedAt:         o.createdAt,
		UpdatedAt:         o.updatedAt,
	}
}

// Transition applies c: the patch first, then the order move, then the delivery move.
//
// This method enforces the following rules:
//   - Each move must be an edge of its graph
//   - Production stages require payment to have been received
//   - Delivery may only be packed while the order is dispatch eligible
//   - QC artifacts only accompany the QC edge they belong to
//   - Attributes are frozen once the order has passed the stage that owns them
//
// Transition does not check roles or the remaining preconditions; callers run the
// transition validator first. Nothing is modified when an error is returned.
func (o *Order) Transition(c Change, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := c.Patch.Validate(); err != nil {
		return err
	}

	from, to := o.state, o.state
	if c.TargetState != nil {
		to = *c.TargetState
	}
	fromDelivery, toDelivery := o.deliveryState, o.deliveryState
	if c.TargetDelivery != nil {
		toDelivery = *c.TargetDelivery
	}

	if from != to {
		if err := to.Validate(); err != nil {
			return err
		}
		if _, ok := OrderGraph().Lookup(from, to); !ok {
			return errs.NewInvalidTransitionError(string(OrderMachine), from.String(), to.String())
		}
		if to.IsProductionStage() && !o.paymentReceived && !c.Patch.ConfirmPayment {
			return errs.NewPreconditionFailedError(string(PrePaymentReceived),
				"payment has not been received for this order")
		}
	}
	if fromDelivery != toDelivery {
		if err := toDelivery.Validate(); err != nil {
			return err
		}
		if _, ok := DeliveryGraph().Lookup(fromDelivery, toDelivery); !ok {
			return errs.NewInvalidTransitionError(string(DeliveryMachine), fromDelivery.String(), toDelivery.String())
		}
		if toDelivery == Packed && !to.IsDispatchEligible() {
			return errs.NewPreconditionFailedError("dispatch_eligible",
				fmt.Sprintf("delivery can only be packed once bulk QC is uploaded, order is %s", to))
		}
	}
	if err := o.checkPatchScope(c.Patch, from, to); err != nil {
		return err
	}

	before := o.Snapshot()
	o.applyPatch(c.Patch, at)
	if from != to {
		o.enterState(from, to, c, at)
	}
	if fromDelivery != toDelivery {
		o.enterDelivery(toDelivery, at, false)
	}
	if Diff(before, o.Snapshot()).IsEmpty() {
		return nil
	}
	o.touch(at)
	return nil
}

// Override forces the order and/or delivery state without consulting the graphs.
// Milestones of the entered states are overwritten. Only the manual override use
// case calls this; it is audited separately.
func (o *Order) Override(targetState *State, targetDelivery *DeliveryState, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if targetState == nil && targetDelivery == nil {
		return errs.NewValueIsRequiredError("override target state")
	}
	if targetState != nil {
		if err := targetState.Validate(); err != nil {
			return err
		}
	}
	if targetDelivery != nil {
		if err := targetDelivery.Validate(); err != nil {
			return err
		}
	}

	if targetState != nil {
		o.state = *targetState
		if m, ok := MilestoneForState(o.state); ok {
			o.milestones[m] = at.UTC()
		}
	}
	if targetDelivery != nil {
		o.enterDelivery(*targetDelivery, at, true)
	}
	o.touch(at)
	return nil
}

func (o *Order) checkPatchScope(p Patch, from, to State) error {
	moving := from != to
	if p.QCVideo != nil && (!moving || to != p.QCVideo.Stage.UploadedState()) {
		return errs.NewValueIsInvalidErrorWithCause("qc video",
			fmt.Errorf("%s qc evidence can only be uploaded when moving to %s", p.QCVideo.Stage, p.QCVideo.Stage.UploadedState()))
	}
	if stage, ok := QCStageOf(from, to); ok && moving && to == stage.UploadedState() {
		if p.QCVideo == nil || strings.TrimSpace(p.QCVideo.Ref) == "" {
			return errs.NewPreconditionFailedError(string(stage.EvidencePrecondition()),
				fmt.Sprintf("upload a new %s QC video", stage))
		}
	}
	rejecting := moving && IsQCRejection(from, to)
	if p.QCReview != nil && !rejecting {
		return errs.NewValueIsInvalidErrorWithCause("qc review",
			errors.New("a rejection reason only accompanies a QC rejection"))
	}
	if rejecting {
		if p.QCReview == nil {
			return errs.NewPreconditionFailedError(string(PreRejectionReason), "a QC rejection needs a reason")
		}
		if err := ValidateReason("qc rejection reason", p.QCReview.Reason); err != nil {
			return errs.NewPreconditionFailedError(string(PreRejectionReason), err.Error())
		}
	}
	if p.RejectionNotes != nil && (moving || from != Submitted) {
		return errs.NewPreconditionFailedError("revision_window",
			"revision notes can only be requested while the order is SUBMITTED")
	}
	if p.DesignFileRef != nil && from > Submitted {
		return errs.NewPreconditionFailedError("design_frozen",
			"the design file cannot change after admin approval")
	}
	if (p.ManufacturerID != nil || p.PaymentLink != nil) && from > PaymentRequested {
		return errs.NewPreconditionFailedError("assignment_frozen",
			"manufacturer and payment link cannot change after payment is confirmed")
	}
	if p.ConfirmPayment && from < PaymentRequested {
		return errs.NewPreconditionFailedError("payment_requested", "payment has not been requested yet")
	}
	return nil
}

func (o *Order) applyPatch(p Patch, at time.Time) {
	if p.ManufacturerID != nil {
		id := *p.ManufacturerID
		o.manufacturerID = &id
	}
	if p.PaymentLink != nil {
		o.paymentLink = strings.TrimSpace(*p.PaymentLink)
	}
	if p.ConfirmPayment && !o.paymentReceived {
		o.paymentReceived = true
		o.stamp(MilestoneEscrowLocked, at, false)
	}
	if p.DesignFileRef != nil {
		o.designFileRef = strings.TrimSpace(*p.DesignFileRef)
	}
	if p.PackagingVideoRef != nil {
		o.packagingVideoRef = strings.TrimSpace(*p.PackagingVideoRef)
	}
	if p.CourierName != nil {
		o.courierName = strings.TrimSpace(*p.CourierName)
	}
	if p.TrackingID != nil {
		o.trackingID = strings.TrimSpace(*p.TrackingID)
	}
	if p.QCVideo != nil {
		rec := o.qcRecord(p.QCVideo.Stage)
		rec.VideoRef = strings.TrimSpace(p.QCVideo.Ref)
	}
	if p.LockSpecs && !o.specsLocked {
		o.specsLocked = true
		o.stamp(MilestoneSpecsLocked, at, false)
	}
	if p.RejectionNotes != nil {
		o.rejectionNotes = strings.TrimSpace(*p.RejectionNotes)
	}
	if p.ClearRejectionNotes {
		o.rejectionNotes = ""
	}
}

func (o *Order) enterState(from, to State, c Change, at time.Time) {
	o.state = to
	if m, ok := MilestoneForState(to); ok {
		o.stamp(m, at, false)
	}

	stage, ok := QCStageOf(from, to)
	if !ok {
		return
	}
	rec := o.qcRecord(stage)
	ts := at.UTC()
	switch {
	case to == stage.UploadedState():
		rec.Decision = QCPendingBuyerReview
		rec.Rounds++
		rec.UploadedAt = &ts
		rec.Reason = ""
		rec.Feedback = nil
		rec.DecidedBy = nil
		rec.DecidedAt = nil
	case to == stage.ApprovedState():
		rec.Decision = QCApproved
		rec.DecidedBy = c.Actor.ID()
		rec.DecidedAt = &ts
	case IsQCRejection(from, to):
		rec.Decision = QCRejected
		rec.Reason = strings.TrimSpace(c.Patch.QCReview.Reason)
		if f := c.Patch.QCReview.Feedback; f != nil {
			fb := *f
			rec.Feedback = &fb
		}
		rec.DecidedBy = c.Actor.ID()
		rec.DecidedAt = &ts
	}
}

func (o *Order) enterDelivery(to DeliveryState, at time.Time, overwrite bool) {
	o.deliveryState = to
	if m, ok := MilestoneForDeliveryState(to); ok {
		o.stamp(m, at, overwrite)
	}
}

func (o *Order) stamp(m Milestone, at time.Time, overwrite bool) {
	if _, ok := o.milestones[m]; ok && !overwrite {
		return
	}
	o.milestones[m] = at.UTC()
}

func (o *Order) touch(at time.Time) {
	o.updatedAt = at.UTC()
	o.version = o.loadedVersion + 1
}

func (o *Order) qcRecord(stage QCStage) *QCRecord {
	if stage == BulkStage {
		return &o.bulkQC
	}
	return &o.sampleQC
}

func copyQC(r QCRecord) QCRecord {
	if r.Feedback != nil {
		fb := *r.Feedback
		r.Feedback = &fb
	}
	if r.UploadedAt != nil {
		t := *r.UploadedAt
		r.UploadedAt = &t
	}
	if r.DecidedAt != nil {
		t := *r.DecidedAt
		r.DecidedAt = &t
	}
	if r.DecidedBy != nil {
		id := *r.DecidedBy
		r.DecidedBy = &id
	}
	return r
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBuyerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("buyer id", err)
	}
	o.buyerID = id
	return nil
}

func (o *Order) setTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errs.NewValueIsRequiredError("title")
	}
	if len([]rune(title)) > maxTitleLength {
		return errs.NewValueIsOutOfRangeError("title length", len([]rune(title)), 1, maxTitleLength)
	}
	o.title = title
	return nil
}

func (o *Order) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity is invalid", fmt.Errorf("%d is not greater than 0", quantity))
	}
	o.quantity = quantity
	return nil
}
