package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/services"
)

// GetDelayReportQueryHandler measures every open order against the stage
// thresholds.
type GetDelayReportQueryHandler struct {
	orders    OrderReader
	projector services.OrderProjector
}

func NewGetDelayReportQueryHandler(orders OrderReader, now func() time.Time) GetDelayReportQueryHandler {
	return GetDelayReportQueryHandler{orders: orders, projector: services.NewOrderProjector(now)}
}

func (h GetDelayReportQueryHandler) Handle(ctx context.Context, query GetDelayReportQuery) (GetDelayReportQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDelayReportQueryResponse{}, err
	}

	orders, err := h.orders.ListOpen(ctx, query.Limit())
	if err != nil {
		return GetDelayReportQueryResponse{}, err
	}

	resp := GetDelayReportQueryResponse{Counts: make(map[string]map[services.DelayBucket]int, len(services.Stages))}
	for _, s := range services.Stages {
		resp.Counts[s.Name] = map[services.DelayBucket]int{}
	}
	for _, o := range orders {
		delays := h.projector.Delays(o)
		overdue := false
		for _, d := range delays {
			resp.Counts[d.Stage][d.Bucket]++
			if d.Open && (d.Bucket == services.DelayWarning || d.Bucket == services.DelayCritical) {
				overdue = true
			}
		}
		if overdue {
			resp.Overdue = append(resp.Overdue, OrderDelays{OrderID: o.ID(), Delays: delays})
		}
	}
	return resp, nil
}
