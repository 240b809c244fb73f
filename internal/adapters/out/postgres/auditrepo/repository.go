package auditrepo

import (
	"context"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormAuditLogRepository implements AuditLogRepository using GORM. Rows are only
// ever inserted; the table rejects updates and deletes.
type GormAuditLogRepository struct {
	db *gorm.DB
}

func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append inserts events in one statement, preserving their order.
func (r *GormAuditLogRepository) Append(ctx context.Context, events ...audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(e))
	}
	return r.db.WithContext(ctx).Create(&dtos).Error
}

// ListByOrder returns the trail of an order by sequence number.
func (r *GormAuditLogRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]audit.Event, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []EventDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("seq").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	events := make([]audit.Event, 0, len(dtos))
	for _, dto := range dtos {
		e, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
