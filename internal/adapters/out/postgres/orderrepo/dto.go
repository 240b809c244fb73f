// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"orderflow/internal/adapters/out/postgres/jsonb"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// States are stored by name; QC records and milestones are JSONB documents.
type OrderDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BuyerID           uuid.UUID  `gorm:"type:uuid;index"`
	ManufacturerID    *uuid.UUID `gorm:"type:uuid;index"`
	Title             string
	Quantity          int
	State             string
	DeliveryState     string
	PaymentLink       string
	PaymentReceived   bool
	SpecsLocked       bool
	RejectionNotes    string
	DesignFileRef     string
	PackagingVideoRef string
	CourierName       string
	TrackingID        string
	SampleQC          jsonb.Value[QCRecordDTO]          `gorm:"column:sample_qc;type:jsonb"`
	BulkQC            jsonb.Value[QCRecordDTO]          `gorm:"column:bulk_qc;type:jsonb"`
	Milestones        jsonb.Value[map[string]time.Time] `gorm:"type:jsonb"`
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// QCRecordDTO is the JSON document of one QC stage.
type QCRecordDTO struct {
	Decision   string            `json:"decision"`
	VideoRef   string            `json:"video_ref,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Feedback   *order.QCFeedback `json:"feedback,omitempty"`
	Rounds     int               `json:"rounds"`
	UploadedAt *time.Time        `json:"uploaded_at,omitempty"`
	DecidedBy  *uuid.UUID        `json:"decided_by,omitempty"`
	DecidedAt  *time.Time        `json:"decided_at,omitempty"`
}

func qcFromDomain(r order.QCRecord) QCRecordDTO {
	dto := QCRecordDTO{
		Decision:   string(r.Decision),
		VideoRef:   r.VideoRef,
		Reason:     r.Reason,
		Feedback:   r.Feedback,
		Rounds:     r.Rounds,
		UploadedAt: r.UploadedAt,
		DecidedAt:  r.DecidedAt,
	}
	if r.DecidedBy != nil {
		raw := r.DecidedBy.Bytes()
		dto.DecidedBy = &raw
	}
	return dto
}

func qcToDomain(dto QCRecordDTO) (order.QCRecord, error) {
	decision, err := order.ParseQCDecision(dto.Decision)
	if err != nil {
		return order.QCRecord{}, err
	}
	r := order.QCRecord{
		Decision:   decision,
		VideoRef:   dto.VideoRef,
		Reason:     dto.Reason,
		Feedback:   dto.Feedback,
		Rounds:     dto.Rounds,
		UploadedAt: dto.UploadedAt,
		DecidedAt:  dto.DecidedAt,
	}
	if dto.DecidedBy != nil {
		id, idErr := kernel.UUIDFromBytes(dto.DecidedBy[:])
		if idErr != nil {
			return order.QCRecord{}, idErr
		}
		r.DecidedBy = &id
	}
	return r, nil
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	var manufacturerID *uuid.UUID
	if s.ManufacturerID != nil {
		raw := s.ManufacturerID.Bytes()
		manufacturerID = &raw
	}

	milestones := make(map[string]time.Time, len(s.Milestones))
	for m, at := range s.Milestones {
		milestones[string(m)] = at
	}

	return OrderDTO{
		ID:                s.ID.Bytes(),
		BuyerID:           s.BuyerID.Bytes(),
		ManufacturerID:    manufacturerID,
		Title:             s.Title,
		Quantity:          s.Quantity,
		State:             s.State.String(),
		DeliveryState:     s.DeliveryState.String(),
		PaymentLink:       s.PaymentLink,
		PaymentReceived:   s.PaymentReceived,
		SpecsLocked:       s.SpecsLocked,
		RejectionNotes:    s.RejectionNotes,
		DesignFileRef:     s.DesignFileRef,
		PackagingVideoRef: s.PackagingVideoRef,
		CourierName:       s.CourierName,
		TrackingID:        s.TrackingID,
		SampleQC:          jsonb.Of(qcFromDomain(s.SampleQC)),
		BulkQC:            jsonb.Of(qcFromDomain(s.BulkQC)),
		Milestones:        jsonb.Of(milestones),
		Version:           s.Version,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}

	var manufacturerID *kernel.UUID
	if dto.ManufacturerID != nil {
		mID, mErr := kernel.UUIDFromBytes((*dto.ManufacturerID)[:])
		if mErr != nil {
			return nil, mErr
		}
		manufacturerID = &mID
	}

	state, err := order.ParseState(dto.State)
	if err != nil {
		return nil, err
	}
	deliveryState, err := order.ParseDeliveryState(dto.DeliveryState)
	if err != nil {
		return nil, err
	}
	sampleQC, err := qcToDomain(dto.SampleQC.V)
	if err != nil {
		return nil, err
	}
	bulkQC, err := qcToDomain(dto.BulkQC.V)
	if err != nil {
		return nil, err
	}

	milestones := make(map[order.Milestone]time.Time, len(dto.Milestones.V))
	for m, at := range dto.Milestones.V {
		milestones[order.Milestone(m)] = at.UTC()
	}

	return order.RestoreOrder(order.Snapshot{
		ID:                id,
		BuyerID:           buyerID,
		Title:             dto.Title,
		Quantity:          dto.Quantity,
		State:             state,
		DeliveryState:     deliveryState,
		ManufacturerID:    manufacturerID,
		PaymentLink:       dto.PaymentLink,
		PaymentReceived:   dto.PaymentReceived,
		SpecsLocked:       dto.SpecsLocked,
		RejectionNotes:    dto.RejectionNotes,
		DesignFileRef:     dto.DesignFileRef,
		PackagingVideoRef: dto.PackagingVideoRef,
		CourierName:       dto.CourierName,
		TrackingID:        dto.TrackingID,
		SampleQC:          sampleQC,
		BulkQC:            bulkQC,
		Milestones:        milestones,
		Version:           dto.Version,
		CreatedAt:         dto.CreatedAt.UTC(),
		UpdatedAt:         dto.UpdatedAt.UTC(),
	})
}
