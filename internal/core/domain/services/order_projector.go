package services

import (
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// StatusLabel is how an order state is shown to a role.
type StatusLabel struct {
	Text  string
	Color string
}

// DeliveryTracking is the buyer-visible delivery projection. Courier and tracking id
// stay empty until pickup is scheduled.
type DeliveryTracking struct {
	State       order.DeliveryState
	CourierName string
	TrackingID  string
	PackedAt    *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
}

// DelayBucket classifies how long a stage has taken against its thresholds.
type DelayBucket string

const (
	DelayOK       DelayBucket = "ok"
	DelayWarning  DelayBucket = "warning"
	DelayCritical DelayBucket = "critical"
	DelayPending  DelayBucket = "pending"
)

// Stage is a measured interval between two milestones.
type Stage struct {
	Name     string
	Start    order.Milestone
	End      order.Milestone
	Warning  time.Duration
	Critical time.Duration
}

// StageDelay is the measurement of one stage. Open is true while the end milestone
// has not been written and the elapsed time runs against now.
type StageDelay struct {
	Stage   string
	Bucket  DelayBucket
	Elapsed time.Duration
	Open    bool
}

// Stages lists the measured stages and their thresholds.
var Stages = []Stage{
	{Name: "acceptance", Start: order.MilestoneSubmitted, End: order.MilestoneApproved, Warning: 24 * time.Hour, Critical: 48 * time.Hour},
	{Name: "sample_qc", Start: order.MilestoneSampleStarted, End: order.MilestoneSampleQCUploaded, Warning: 72 * time.Hour, Critical: 120 * time.Hour},
	{Name: "bulk_qc", Start: order.MilestoneBulkStarted, End: order.MilestoneBulkQCUploaded, Warning: 168 * time.Hour, Critical: 336 * time.Hour},
	{Name: "delivery", Start: order.MilestoneDispatched, End: order.MilestoneDelivered, Warning: 72 * time.Hour, Critical: 120 * time.Hour},
}

// OrderView is the full read model of an order for one role.
type OrderView struct {
	Order           *order.Order
	Role            kernel.Role
	Label           StatusLabel
	PaymentRequired bool
	Tracking        *DeliveryTracking
	Delays          []StageDelay
}

// OrderProjector derives read-only views. It never mutates the order.
type OrderProjector struct {
	now func() time.Time
}

func NewOrderProjector(now func() time.Time) OrderProjector {
	if now == nil {
		now = time.Now
	}
	return OrderProjector{now: now}
}

// View projects o for role.
func (p OrderProjector) View(o *order.Order, role kernel.Role) OrderView {
	v := OrderView{
		Order:           o,
		Role:            role,
		Label:           p.Label(o.State(), role),
		PaymentRequired: PaymentRequired(o.State()),
		Delays:          p.Delays(o),
	}
	if role == kernel.RoleBuyer {
		v.Tracking = BuyerTracking(o)
	} else {
		v.Tracking = fullTracking(o)
	}
	return v
}

// PaymentRequired is derived from the state alone.
func PaymentRequired(s order.State) bool {
	return s == order.PaymentRequested
}

// Label returns the role's wording and color for s. Buyers and manufacturers get
// their own vocabulary; admins and system actors see the state name.
func (p OrderProjector) Label(s order.State, role kernel.Role) StatusLabel {
	var table map[order.State]StatusLabel
	switch role {
	case kernel.RoleBuyer:
		table = buyerLabels
	case kernel.RoleManufacturer:
		table = manufacturerLabels
	}
	if l, ok := table[s]; ok {
		return l
	}
	return StatusLabel{Text: humanize(s.String()), Color: adminColors[s]}
}

// BuyerTracking returns nil until delivery has started. Courier details are only
// disclosed from PICKUP_SCHEDULED on.
func BuyerTracking(o *order.Order) *DeliveryTracking {
	if !o.DeliveryState().HasStarted() {
		return nil
	}
	t := fullTracking(o)
	if !o.DeliveryState().AtLeast(order.PickupScheduled) {
		t.CourierName = ""
		t.TrackingID = ""
	}
	return t
}

func fullTracking(o *order.Order) *DeliveryTracking {
	t := &DeliveryTracking{
		State:       o.DeliveryState(),
		CourierName: o.CourierName(),
		TrackingID:  o.TrackingID(),
	}
	t.PackedAt = milestone(o, order.MilestonePacked)
	t.ShippedAt = milestone(o, order.MilestoneDispatched)
	t.DeliveredAt = milestone(o, order.MilestoneDeliveryCompleted)
	return t
}

// Delays measures every stage of o.
func (p OrderProjector) Delays(o *order.Order) []StageDelay {
	now := p.now()
	out := make([]StageDelay, 0, len(Stages))
	for _, s := range Stages {
		out = append(out, Measure(s, o, now))
	}
	return out
}

// Measure buckets one stage. A stage whose start milestone is missing is pending.
func Measure(s Stage, o *order.Order, now time.Time) StageDelay {
	d := StageDelay{Stage: s.Name, Bucket: DelayPending}
	start, ok := o.Milestone(s.Start)
	if !ok {
		return d
	}
	end, ok := o.Milestone(s.End)
	if !ok {
		end = now
		d.Open = true
	}
	d.Elapsed = end.Sub(start)
	if d.Elapsed < 0 {
		d.Elapsed = 0
	}
	switch {
	case d.Elapsed >= s.Critical:
		d.Bucket = DelayCritical
	case d.Elapsed >= s.Warning:
		d.Bucket = DelayWarning
	default:
		d.Bucket = DelayOK
	}
	return d
}

func milestone(o *order.Order, m order.Milestone) *time.Time {
	t, ok := o.Milestone(m)
	if !ok {
		return nil
	}
	return &t
}

func humanize(name string) string {
	words := strings.Split(strings.ToLower(name), "_")
	for i, w := range words {
		switch w {
		case "qc":
			words[i] = "QC"
		case "":
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var buyerLabels = map[order.State]StatusLabel{
	order.Draft:                {"Draft", "gray"},
	order.Submitted:            {"Submitted – Under Review", "blue"},
	order.AdminApproved:        {"Approved – Finding Manufacturer", "blue"},
	order.ManufacturerAssigned: {"Approved – Manufacturer Assigned", "indigo"},
	order.PaymentRequested:     {"Payment Required", "orange"},
	order.PaymentConfirmed:     {"Payment Received", "green"},
	order.SampleInProgress:     {"Sample in Production", "purple"},
	order.SampleQCUploaded:     {"Sample Ready for Your Review", "yellow"},
	order.SampleApproved:       {"Sample Approved", "green"},
	order.BulkUnlocked:         {"Bulk Production Scheduled", "teal"},
	order.BulkInProduction:     {"Bulk in Production", "purple"},
	order.BulkQCUploaded:       {"Bulk QC Ready for Your Review", "yellow"},
	order.ReadyForDispatch:     {"Preparing Shipment", "teal"},
	order.Dispatched:           {"Shipped", "blue"},
	order.Delivered:            {"Delivered", "green"},
	order.Completed:            {"Completed", "green"},
}

var manufacturerLabels = map[order.State]StatusLabel{
	order.ManufacturerAssigned: {"New Order Assigned", "indigo"},
	order.PaymentRequested:     {"Awaiting Buyer Payment", "orange"},
	order.PaymentConfirmed:     {"Ready to Start Sample", "green"},
	order.SampleInProgress:     {"Sample in Progress", "purple"},
	order.SampleQCUploaded:     {"Sample QC Submitted", "yellow"},
	order.SampleApproved:       {"Sample Approved", "green"},
	order.BulkUnlocked:         {"Start Bulk Production", "teal"},
	order.BulkInProduction:     {"Bulk in Progress", "purple"},
	order.BulkQCUploaded:       {"Bulk QC Submitted", "yellow"},
	order.ReadyForDispatch:     {"Pack for Dispatch", "teal"},
	order.Dispatched:           {"Dispatched", "blue"},
	order.Delivered:            {"Delivered", "green"},
	order.Completed:            {"Completed", "green"},
}

var adminColors = map[order.State]string{
	order.Draft:                "gray",
	order.Submitted:            "blue",
	order.AdminApproved:        "blue",
	order.ManufacturerAssigned: "indigo",
	order.PaymentRequested:     "orange",
	order.PaymentConfirmed:     "green",
	order.SampleInProgress:     "purple",
	order.SampleQCUploaded:     "yellow",
	order.SampleApproved:       "green",
	order.BulkUnlocked:         "teal",
	order.BulkInProduction:     "purple",
	order.BulkQCUploaded:       "yellow",
	order.ReadyForDispatch:     "teal",
	order.Dispatched:           "blue",
	order.Delivered:            "green",
	order.Completed:            "green",
}
