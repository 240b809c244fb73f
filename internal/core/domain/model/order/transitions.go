package order

import (
	"fmt"
	"slices"

	"orderflow/internal/core/domain/model/kernel"
)

// Precondition names a business check attached to an edge. The validator evaluates
// them against a Context.
type Precondition string

const (
	PreQuantityPositive     Precondition = "quantity_positive"
	PreDesignFile           Precondition = "design_file"
	PreManufacturerAssigned Precondition = "manufacturer_assigned"
	PrePaymentLink          Precondition = "payment_link"
	PrePaymentReceived      Precondition = "payment_received"
	PreSpecsLocked          Precondition = "specs_locked"
	PreSampleQCEvidence     Precondition = "sample_qc_evidence"
	PreBulkQCEvidence       Precondition = "bulk_qc_evidence"
	PreRejectionReason      Precondition = "rejection_reason"
	PreQCFeedback           Precondition = "qc_feedback"
	PreDeliveryScheduled    Precondition = "delivery_scheduled"
	PreDeliveryCompleted    Precondition = "delivery_completed"
	PrePackagingEvidence    Precondition = "packaging_evidence"
	PreCourierDetails       Precondition = "courier_details"
)

// Machine names a state graph in errors and audit records.
type Machine string

const (
	OrderMachine    Machine = "order"
	DeliveryMachine Machine = "delivery"
)

// Edge is a permitted move between two states of one machine.
type Edge[S comparable] struct {
	From          S
	To            S
	Roles         []kernel.Role
	Preconditions []Precondition
}

// Allows reports whether role is in the edge's role set.
func (e Edge[S]) Allows(role kernel.Role) bool {
	return slices.Contains(e.Roles, role)
}

// Requires reports whether p is attached to the edge.
func (e Edge[S]) Requires(p Precondition) bool {
	return slices.Contains(e.Preconditions, p)
}

// Action renders the edge for authorization errors.
func (e Edge[S]) Action() string {
	return fmt.Sprintf("move %v -> %v", e.From, e.To)
}

type edgeKey[S comparable] struct {
	from S
	to   S
}

// Graph is an immutable edge table. It is the single source of truth for which
// transitions exist, who may trigger them and what they require.
type Graph[S comparable] struct {
	machine Machine
	edges   []Edge[S]
	index   map[edgeKey[S]]Edge[S]
}

func newGraph[S comparable](machine Machine, edges []Edge[S]) Graph[S] {
	index := make(map[edgeKey[S]]Edge[S], len(edges))
	for _, e := range edges {
		index[edgeKey[S]{e.From, e.To}] = e
	}
	return Graph[S]{machine: machine, edges: edges, index: index}
}

func (g Graph[S]) Machine() Machine {
	return g.machine
}

// Lookup returns the edge from -> to if it exists.
func (g Graph[S]) Lookup(from, to S) (Edge[S], bool) {
	e, ok := g.index[edgeKey[S]{from, to}]
	return e, ok
}

// Next lists the edges leaving from, in declaration order.
func (g Graph[S]) Next(from S) []Edge[S] {
	var out []Edge[S]
	for _, e := range g.edges {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

// Edges returns a copy of the whole table.
func (g Graph[S]) Edges() []Edge[S] {
	return slices.Clone(g.edges)
}

var (
	buyer        = kernel.RoleBuyer
	manufacturer = kernel.RoleManufacturer
	admin        = kernel.RoleAdmin
	system       = kernel.RoleSystem
)

func roles(r ...kernel.Role) []kernel.Role { return r }

func pre(p ...Precondition) []Precondition { return p }

var orderGraph = newGraph(OrderMachine, withPaymentGate([]Edge[State]{
	{Draft, Submitted, roles(buyer), pre(PreQuantityPositive, PreDesignFile)},
	{Submitted, AdminApproved, roles(admin), nil},
	{AdminApproved, ManufacturerAssigned, roles(admin), pre(PreManufacturerAssigned)},
	{ManufacturerAssigned, PaymentRequested, roles(admin), pre(PrePaymentLink)},
	{PaymentRequested, PaymentConfirmed, roles(admin, system), pre(PrePaymentReceived)},
	{PaymentConfirmed, SampleInProgress, roles(manufacturer), pre(PreSpecsLocked)},
	{SampleInProgress, SampleQCUploaded, roles(manufacturer), pre(PreSampleQCEvidence)},
	{SampleQCUploaded, SampleApproved, roles(buyer), nil},
	{SampleQCUploaded, SampleInProgress, roles(buyer), pre(PreRejectionReason)},
	{SampleApproved, BulkUnlocked, roles(admin, system), nil},
	{BulkUnlocked, BulkInProduction, roles(manufacturer), nil},
	{BulkInProduction, BulkQCUploaded, roles(manufacturer), pre(PreBulkQCEvidence)},
	{BulkQCUploaded, ReadyForDispatch, roles(buyer, admin), nil},
	{BulkQCUploaded, BulkInProduction, roles(buyer, admin), pre(PreRejectionReason, PreQCFeedback)},
	{ReadyForDispatch, Dispatched, roles(admin, system), pre(PreDeliveryScheduled)},
	{Dispatched, Delivered, roles(admin, system), pre(PreDeliveryCompleted)},
	{Delivered, Completed, roles(buyer, admin, system), nil},
}))

var deliveryGraph = newGraph(DeliveryMachine, []Edge[DeliveryState]{
	{NotStarted, Packed, roles(manufacturer), pre(PrePackagingEvidence)},
	{Packed, PickupScheduled, roles(admin, system), pre(PreCourierDetails)},
	{PickupScheduled, InTransit, roles(admin, system), nil},
	{InTransit, DeliveryDelivered, roles(admin, system), nil},
})

// withPaymentGate prepends PrePaymentReceived to every edge entering a production
// stage so that no path into production can skip payment.
func withPaymentGate(edges []Edge[State]) []Edge[State] {
	for i, e := range edges {
		if e.To.IsProductionStage() && !e.Requires(PrePaymentReceived) {
			edges[i].Preconditions = append(pre(PrePaymentReceived), e.Preconditions...)
		}
	}
	return edges
}

// OrderGraph returns the order lifecycle edge table.
func OrderGraph() Graph[State] {
	return orderGraph
}

// DeliveryGraph returns the delivery sub-state edge table.
func DeliveryGraph() Graph[DeliveryState] {
	return deliveryGraph
}

// IsQCRejection reports whether from -> to sends a QC upload back to production.
func IsQCRejection(from, to State) bool {
	return (from == SampleQCUploaded && to == SampleInProgress) ||
		(from == BulkQCUploaded && to == BulkInProduction)
}

// QCStageOf returns the QC stage whose upload or decision the edge from -> to
// represents.
func QCStageOf(from, to State) (QCStage, bool) {
	switch {
	case to == SampleQCUploaded || from == SampleQCUploaded:
		return SampleStage, true
	case to == BulkQCUploaded || from == BulkQCUploaded:
		return BulkStage, true
	default:
		return "", false
	}
}
