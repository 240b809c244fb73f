// Package servers holds the HTTP contract of the orderflow API described in
// openapi.yaml: request and response bodies, the ServerInterface implemented by the
// inbound HTTP adapter, and the echo wiring that binds path, header and query
// parameters before delegating to it.
package servers

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	DesignFileRef *string `json:"designFileRef,omitempty"`
	Quantity      int     `json:"quantity"`
	Title         string  `json:"title"`
}

// SubmitOrder defines model for SubmitOrder.
type SubmitOrder struct {
	DesignFileRef *string `json:"designFileRef,omitempty"`
}

// AssignManufacturer defines model for AssignManufacturer.
type AssignManufacturer struct {
	ManufacturerId openapi_types.UUID `json:"manufacturerId"`
}

// ApproveOrder defines model for ApproveOrder.
type ApproveOrder struct {
	PaymentLink string `json:"paymentLink"`
}

// UploadQC defines model for UploadQC.
type UploadQC struct {
	VideoRef string `json:"videoRef"`
}

// QCFeedback defines model for QCFeedback.
type QCFeedback struct {
	DefectType  string `json:"defectType"`
	Location    string `json:"location"`
	RequiredFix string `json:"requiredFix"`
	Severity    string `json:"severity"`
}

// RejectQC defines model for RejectQC.
type RejectQC struct {
	Feedback *QCFeedback `json:"feedback,omitempty"`
	Reason   string      `json:"reason"`
}

// MarkPacked defines model for MarkPacked.
type MarkPacked struct {
	PackagingVideoRef *string `json:"packagingVideoRef,omitempty"`
}

// SchedulePickup defines model for SchedulePickup.
type SchedulePickup struct {
	CourierName *string `json:"courierName,omitempty"`
	TrackingId  *string `json:"trackingId,omitempty"`
}

// RequestRevision defines model for RequestRevision.
type RequestRevision struct {
	Notes string `json:"notes"`
}

// Transition defines model for Transition.
type Transition struct {
	DeliveryState *string `json:"deliveryState,omitempty"`
	State         *string `json:"state,omitempty"`
}

// Override defines model for Override.
type Override struct {
	DeliveryState *string `json:"deliveryState,omitempty"`
	Reason        string  `json:"reason"`
	State         *string `json:"state,omitempty"`
}

// TransitionResult defines model for TransitionResult.
type TransitionResult struct {
	NoOp     bool       `json:"noOp"`
	Order    *OrderView `json:"order,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
}

// OrderSummary defines model for OrderSummary.
type OrderSummary struct {
	BuyerId        openapi_types.UUID  `json:"buyerId"`
	DeliveryState  string              `json:"deliveryState"`
	Id             openapi_types.UUID  `json:"id"`
	ManufacturerId *openapi_types.UUID `json:"manufacturerId,omitempty"`
	State          string              `json:"state"`
	Title          string              `json:"title"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// QCRecord defines model for QCRecord.
type QCRecord struct {
	Decision string      `json:"decision"`
	Feedback *QCFeedback `json:"feedback,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Rounds   int         `json:"rounds"`
	VideoRef string      `json:"videoRef,omitempty"`
}

// Tracking defines model for Tracking.
type Tracking struct {
	CourierName   string     `json:"courierName,omitempty"`
	DeliveredAt   *time.Time `json:"deliveredAt,omitempty"`
	DeliveryState string     `json:"deliveryState"`
	PackedAt      *time.Time `json:"packedAt,omitempty"`
	ShippedAt     *time.Time `json:"shippedAt,omitempty"`
	TrackingId    string     `json:"trackingId,omitempty"`
}

// StageDelay defines model for StageDelay.
type StageDelay struct {
	Bucket         string `json:"bucket"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
	Open           bool   `json:"open"`
	Stage          string `json:"stage"`
}

// OrderView defines model for OrderView.
type OrderView struct {
	BulkQc          *QCRecord           `json:"bulkQc,omitempty"`
	BuyerId         openapi_types.UUID  `json:"buyerId"`
	Delays          []StageDelay        `json:"delays,omitempty"`
	DeliveryState   string              `json:"deliveryState"`
	Id              openapi_types.UUID  `json:"id"`
	Label           string              `json:"label"`
	LabelColor      string              `json:"labelColor"`
	ManufacturerId  *openapi_types.UUID `json:"manufacturerId,omitempty"`
	PaymentLink     string              `json:"paymentLink,omitempty"`
	PaymentRequired bool                `json:"paymentRequired"`
	Quantity        int                 `json:"quantity"`
	RejectionNotes  string              `json:"rejectionNotes,omitempty"`
	SampleQc        *QCRecord           `json:"sampleQc,omitempty"`
	SpecsLocked     bool                `json:"specsLocked"`
	State           string              `json:"state"`
	Title           string              `json:"title"`
	Tracking        *Tracking           `json:"tracking,omitempty"`
	Version         int64               `json:"version"`
}

// AuditEvent defines model for AuditEvent.
type AuditEvent struct {
	ActorId       *openapi_types.UUID `json:"actorId,omitempty"`
	ActorRole     string              `json:"actorRole"`
	ChangedFields []string            `json:"changedFields,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	From          string              `json:"from,omitempty"`
	Machine       string              `json:"machine"`
	Metadata      map[string]string   `json:"metadata,omitempty"`
	Outcome       string              `json:"outcome"`
	Reason        string              `json:"reason,omitempty"`
	Seq           int64               `json:"seq"`
	To            string              `json:"to"`
}

// AuditTrail defines model for AuditTrail.
type AuditTrail struct {
	Events                []AuditEvent `json:"events"`
	ReplayError           string       `json:"replayError,omitempty"`
	ReplayedDeliveryState string       `json:"replayedDeliveryState,omitempty"`
	ReplayedState         string       `json:"replayedState,omitempty"`
}

// OverdueOrder defines model for OverdueOrder.
type OverdueOrder struct {
	Delays  []StageDelay       `json:"delays"`
	OrderId openapi_types.UUID `json:"orderId"`
}

// DelayReport defines model for DelayReport.
type DelayReport struct {
	Counts  map[string]map[string]int `json:"counts"`
	Overdue []OverdueOrder            `json:"overdue"`
}

// ActorParams carries the X-Actor-Role and X-Actor-Id headers every operation takes.
type ActorParams struct {
	XActorRole string
	XActorId   *openapi_types.UUID
}

// GetDelayReportParams defines parameters for GetDelayReport.
type GetDelayReportParams struct {
	ActorParams
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}
