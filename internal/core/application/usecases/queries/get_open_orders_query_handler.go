package queries

import (
	"context"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOpenOrdersQueryHandler reads the open-orders listing straight from the orders
// table.
type GetOpenOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetOpenOrdersQueryHandler creates a handler for open order listings.
func NewGetOpenOrdersQueryHandler(db *gorm.DB) GetOpenOrdersQueryHandler {
	return GetOpenOrdersQueryHandler{db: db}
}

// Handle returns open orders, oldest first. Buyers see their own orders and
// manufacturers the orders assigned to them.
func (h GetOpenOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetOpenOrdersQuery,
) ([]GetOpenOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		sql  strings.Builder
		args = []any{order.Completed.String()}
	)
	sql.WriteString(`
		SELECT
			id,
			buyer_id,
			manufacturer_id,
			title,
			state,
			delivery_state,
			updated_at
		FROM orders
		WHERE state <> ?`)
	actor := query.Actor()
	switch actor.Role() {
	case kernel.RoleBuyer:
		sql.WriteString(" AND buyer_id = ?")
		args = append(args, actor.ID().Bytes())
	case kernel.RoleManufacturer:
		sql.WriteString(" AND manufacturer_id = ?")
		args = append(args, actor.ID().Bytes())
	}
	sql.WriteString(" ORDER BY created_at, id")

	rows, err := h.db.WithContext(ctx).Raw(sql.String(), args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetOpenOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			resp           GetOpenOrdersQueryResponse
			id, buyerID    uuid.UUID
			manufacturerID uuid.NullUUID
			state, dstate  string
		)
		if err = rows.Scan(&id, &buyerID, &manufacturerID, &resp.Title, &state, &dstate, &resp.UpdatedAt); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.BuyerID, err = kernel.UUIDFromBytes(buyerID[:]); err != nil {
			return nil, err
		}
		if manufacturerID.Valid {
			m, mErr := kernel.UUIDFromBytes(manufacturerID.UUID[:])
			if mErr != nil {
				return nil, mErr
			}
			resp.ManufacturerID = &m
		}
		if resp.State, err = order.ParseState(state); err != nil {
			return nil, err
		}
		if resp.DeliveryState, err = order.ParseDeliveryState(dstate); err != nil {
			return nil, err
		}
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
