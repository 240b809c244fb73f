package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// TransitionCheck is one validation request. A nil proposed state means the machine
// does not move.
type TransitionCheck struct {
	CurrentOrder     order.State
	ProposedOrder    *order.State
	CurrentDelivery  order.DeliveryState
	ProposedDelivery *order.DeliveryState
	Actor            kernel.Actor
	Context          order.Context
	PatchFields      []string
}

// Verdict is the outcome of a check. Err is nil exactly when Allowed is true.
type Verdict struct {
	Allowed bool
	Kind    errs.ErrorKind
	Reason  string
	Machine order.Machine
	Err     error
}

func allow() Verdict {
	return Verdict{Allowed: true}
}

func deny(machine order.Machine, err error) Verdict {
	return Verdict{
		Allowed: false,
		Kind:    errs.KindOf(err),
		Reason:  err.Error(),
		Machine: machine,
		Err:     err,
	}
}

// TransitionValidator evaluates requests against the declarative edge tables.
//
// For each machine that moves, the algorithm is:
//   - look the edge up; a missing edge is InvalidTransition
//   - check the actor's role against the edge, and bind buyers and manufacturers
//     to the order they belong to; a mismatch is UnauthorizedActor
//   - evaluate the edge's preconditions against the context; the first failure is
//     PreconditionFailed with a reason the actor can act on
//
// Authorization of both machines and of every patched field runs before any
// precondition, so a caller never learns business details of an action they may
// not take. The delivery packing coupling is checked last.
type TransitionValidator struct {
	orders     order.Graph[order.State]
	deliveries order.Graph[order.DeliveryState]
}

func NewTransitionValidator() TransitionValidator {
	return TransitionValidator{
		orders:     order.OrderGraph(),
		deliveries: order.DeliveryGraph(),
	}
}

// Validate runs the full check. A request that moves nothing and patches nothing is
// allowed; callers treat it as a no-op.
func (v TransitionValidator) Validate(c TransitionCheck) Verdict {
	if err := c.Actor.Validate(); err != nil {
		return deny(order.OrderMachine, err)
	}

	var orderEdge *order.Edge[order.State]
	if c.ProposedOrder != nil && *c.ProposedOrder != c.CurrentOrder {
		e, ok := v.orders.Lookup(c.CurrentOrder, *c.ProposedOrder)
		if !ok {
			return deny(order.OrderMachine, errs.NewInvalidTransitionError(
				string(order.OrderMachine), c.CurrentOrder.String(), c.ProposedOrder.String()))
		}
		orderEdge = &e
	}
	var deliveryEdge *order.Edge[order.DeliveryState]
	if c.ProposedDelivery != nil && *c.ProposedDelivery != c.CurrentDelivery {
		e, ok := v.deliveries.Lookup(c.CurrentDelivery, *c.ProposedDelivery)
		if !ok {
			return deny(order.DeliveryMachine, errs.NewInvalidTransitionError(
				string(order.DeliveryMachine), c.CurrentDelivery.String(), c.ProposedDelivery.String()))
		}
		deliveryEdge = &e
	}

	if orderEdge != nil {
		if err := authorize(c.Actor, orderEdge.Roles, orderEdge.Action()); err != nil {
			return deny(order.OrderMachine, err)
		}
	}
	if deliveryEdge != nil {
		if err := authorize(c.Actor, deliveryEdge.Roles, "delivery "+deliveryEdge.Action()); err != nil {
			return deny(order.DeliveryMachine, err)
		}
	}
	for _, field := range c.PatchFields {
		if err := authorize(c.Actor, order.FieldRoles(field), "update "+field); err != nil {
			return deny(order.OrderMachine, err)
		}
	}
	if err := bind(c.Actor, c.Context); err != nil {
		return deny(order.OrderMachine, err)
	}

	if orderEdge != nil {
		if err := checkAll(orderEdge.Preconditions, c.Context); err != nil {
			return deny(order.OrderMachine, err)
		}
	}
	if deliveryEdge != nil {
		if err := checkAll(deliveryEdge.Preconditions, c.Context); err != nil {
			return deny(order.DeliveryMachine, err)
		}
		if deliveryEdge.To == order.Packed && !c.Context.State.IsDispatchEligible() {
			return deny(order.DeliveryMachine, errs.NewPreconditionFailedError("dispatch_eligible",
				fmt.Sprintf("packing can start once bulk QC is uploaded; the order is %s", c.Context.State)))
		}
	}
	return allow()
}

// AuthorizeOverride admits manual overrides by admins with a reason of at least
// order.MinReasonLength characters.
func (v TransitionValidator) AuthorizeOverride(actor kernel.Actor, reason string) error {
	if err := authorize(actor, []kernel.Role{kernel.RoleAdmin}, "override order state"); err != nil {
		return err
	}
	return order.ValidateReason("override reason", reason)
}

func authorize(actor kernel.Actor, allowed []kernel.Role, action string) error {
	if slices.Contains(allowed, actor.Role()) {
		return nil
	}
	return errs.NewUnauthorizedActorError(actor.Role().String(), actor.IDString(), action, kernel.RoleNames(allowed))
}

// bind ties buyers to their own orders and manufacturers to the orders assigned to
// them. Admins and system actors act on any order.
func bind(actor kernel.Actor, c order.Context) error {
	switch actor.Role() {
	case kernel.RoleBuyer:
		if !actor.Is(c.BuyerID) {
			return errs.NewUnauthorizedActorErrorWithCause(actor.Role().String(), actor.IDString(),
				"act on this order", nil, errors.New("order belongs to another buyer"))
		}
	case kernel.RoleManufacturer:
		if c.ManufacturerID == nil || !actor.Is(*c.ManufacturerID) {
			return errs.NewUnauthorizedActorErrorWithCause(actor.Role().String(), actor.IDString(),
				"act on this order", nil, errors.New("order is not assigned to this manufacturer"))
		}
	}
	return nil
}

func checkAll(preconditions []order.Precondition, c order.Context) error {
	for _, p := range preconditions {
		if err := check(p, c); err != nil {
			return err
		}
	}
	return nil
}

func check(p order.Precondition, c order.Context) error {
	fail := func(reason string) error {
		return errs.NewPreconditionFailedError(string(p), reason)
	}
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	switch p {
	case order.PreQuantityPositive:
		if c.Quantity <= 0 {
			return fail("quantity must be greater than zero")
		}
	case order.PreDesignFile:
		if blank(c.DesignFileRef) {
			return fail("attach a design file before submitting the order")
		}
	case order.PreManufacturerAssigned:
		if c.ManufacturerID == nil {
			return fail("choose a manufacturer to assign")
		}
	case order.PrePaymentLink:
		if err := order.ValidatePaymentLink(c.PaymentLink); err != nil {
			return fail("provide an absolute http(s) payment link")
		}
	case order.PrePaymentReceived:
		if !c.PaymentReceived {
			return fail("payment has not been received for this order")
		}
	case order.PreSpecsLocked:
		if !c.SpecsLocked {
			return fail("specifications must be locked before sample production starts")
		}
	case order.PreSampleQCEvidence:
		if blank(c.SampleQCVideoRef) {
			return fail("upload a sample QC video")
		}
	case order.PreBulkQCEvidence:
		if blank(c.BulkQCVideoRef) {
			return fail("upload a bulk QC video")
		}
	case order.PreRejectionReason:
		if err := order.ValidateReason("rejection reason", c.RejectionReason); err != nil {
			return fail(fmt.Sprintf("explain the rejection in at least %d characters", order.MinReasonLength))
		}
		if c.Feedback != nil {
			if err := c.Feedback.Validate(); err != nil {
				return fail("complete every feedback field: defect type, severity, location and required fix")
			}
		}
	case order.PreQCFeedback:
		if c.Feedback == nil || c.Feedback.Validate() != nil {
			return fail("bulk rejections need feedback with defect type, severity, location and required fix")
		}
	case order.PreDeliveryScheduled:
		if !c.DeliveryState.AtLeast(order.PickupScheduled) {
			return fail(fmt.Sprintf("schedule the courier pickup first; delivery is %s", c.DeliveryState))
		}
	case order.PreDeliveryCompleted:
		if c.DeliveryState != order.DeliveryDelivered {
			return fail(fmt.Sprintf("the shipment has not been delivered yet; delivery is %s", c.DeliveryState))
		}
	case order.PrePackagingEvidence:
		if blank(c.PackagingVideoRef) {
			return fail("upload a packaging video")
		}
	case order.PreCourierDetails:
		if blank(c.CourierName) || blank(c.TrackingID) {
			return fail("courier name and tracking id are both required")
		}
	default:
		return fail("unknown precondition")
	}
	return nil
}
