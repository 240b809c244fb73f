// Package auditrepo persists the append-only audit log.
package auditrepo

import (
	"time"

	"orderflow/internal/adapters/out/postgres/jsonb"
	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EventDTO is one audit_log row. Seq is assigned by the database.
type EventDTO struct {
	Seq           int64      `gorm:"primaryKey;autoIncrement"`
	OrderID       uuid.UUID  `gorm:"type:uuid;index"`
	ActorRole     string
	ActorID       *uuid.UUID `gorm:"type:uuid"`
	Outcome       string
	Machine       string
	FromState     string
	ToState       string
	ChangedFields pq.StringArray                 `gorm:"type:text[]"`
	Before        jsonb.Value[map[string]any]    `gorm:"type:jsonb"`
	After         jsonb.Value[map[string]any]    `gorm:"type:jsonb"`
	Reason        string
	Metadata      jsonb.Value[map[string]string] `gorm:"type:jsonb"`
	CreatedAt     time.Time
}

func (EventDTO) TableName() string {
	return "audit_log"
}

func fromDomain(e audit.Event) EventDTO {
	var actorID *uuid.UUID
	if e.ActorID != nil {
		raw := e.ActorID.Bytes()
		actorID = &raw
	}
	fields := pq.StringArray(e.ChangedFields)
	if fields == nil {
		fields = pq.StringArray{}
	}
	return EventDTO{
		OrderID:       e.OrderID.Bytes(),
		ActorRole:     e.ActorRole.String(),
		ActorID:       actorID,
		Outcome:       string(e.Outcome),
		Machine:       string(e.Machine),
		FromState:     e.From,
		ToState:       e.To,
		ChangedFields: fields,
		Before:        jsonb.Of(e.Before),
		After:         jsonb.Of(e.After),
		Reason:        e.Reason,
		Metadata:      jsonb.Of(e.Metadata),
		CreatedAt:     e.CreatedAt,
	}
}

func toDomain(dto EventDTO) (audit.Event, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return audit.Event{}, err
	}
	role, err := kernel.ParseRole(dto.ActorRole)
	if err != nil {
		return audit.Event{}, err
	}
	outcome, err := audit.ParseOutcome(dto.Outcome)
	if err != nil {
		return audit.Event{}, err
	}

	var actorID *kernel.UUID
	if dto.ActorID != nil {
		id, idErr := kernel.UUIDFromBytes(dto.ActorID[:])
		if idErr != nil {
			return audit.Event{}, idErr
		}
		actorID = &id
	}

	return audit.Event{
		Seq:           dto.Seq,
		OrderID:       orderID,
		ActorRole:     role,
		ActorID:       actorID,
		Outcome:       outcome,
		Machine:       order.Machine(dto.Machine),
		From:          dto.FromState,
		To:            dto.ToState,
		ChangedFields: []string(dto.ChangedFields),
		Before:        dto.Before.V,
		After:         dto.After.V,
		Reason:        dto.Reason,
		Metadata:      dto.Metadata.V,
		CreatedAt:     dto.CreatedAt.UTC(),
	}, nil
}
