package queries

import (
	"context"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// GetAuditTrailQueryHandler reads and replays audit trails. Trails are visible to
// admins and system actors only.
type GetAuditTrailQueryHandler struct {
	events AuditReader
}

func NewGetAuditTrailQueryHandler(events AuditReader) GetAuditTrailQueryHandler {
	return GetAuditTrailQueryHandler{events: events}
}

func (h GetAuditTrailQueryHandler) Handle(ctx context.Context, query GetAuditTrailQuery) (GetAuditTrailQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetAuditTrailQueryResponse{}, err
	}
	if r := query.Actor().Role(); r != kernel.RoleAdmin && r != kernel.RoleSystem {
		return GetAuditTrailQueryResponse{}, errs.NewUnauthorizedActorError(r.String(), query.Actor().IDString(),
			"read audit trail", kernel.RoleNames([]kernel.Role{kernel.RoleAdmin, kernel.RoleSystem}))
	}

	events, err := h.events.ListByOrder(ctx, query.OrderID())
	if err != nil {
		return GetAuditTrailQueryResponse{}, err
	}
	if len(events) == 0 {
		return GetAuditTrailQueryResponse{}, errs.NewObjectNotFoundError("audit trail", query.OrderID().String())
	}

	resp := GetAuditTrailQueryResponse{Events: events}
	replay, err := audit.Replay(events)
	if err != nil {
		resp.ReplayErr = err
		return resp, nil
	}
	resp.Replay = &replay
	return resp, nil
}
