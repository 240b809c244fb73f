package http

import (
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/generated/servers"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func uuidPtr(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	u := openapi_types.UUID(id.Bytes())
	return &u
}

func toOrderView(v services.OrderView) servers.OrderView {
	o := v.Order
	out := servers.OrderView{
		Id:              o.ID().Bytes(),
		BuyerId:         o.BuyerID().Bytes(),
		ManufacturerId:  uuidPtr(o.ManufacturerID()),
		Title:           o.Title(),
		Quantity:        o.Quantity(),
		State:           o.State().String(),
		DeliveryState:   o.DeliveryState().String(),
		Label:           v.Label.Text,
		LabelColor:      v.Label.Color,
		PaymentRequired: v.PaymentRequired,
		PaymentLink:     o.PaymentLink(),
		SpecsLocked:     o.SpecsLocked(),
		RejectionNotes:  o.RejectionNotes(),
		SampleQc:        toQCRecord(o.QC(order.SampleStage)),
		BulkQc:          toQCRecord(o.QC(order.BulkStage)),
		Delays:          toStageDelays(v.Delays),
		Version:         o.Version(),
	}
	if t := v.Tracking; t != nil {
		out.Tracking = &servers.Tracking{
			DeliveryState: t.State.String(),
			CourierName:   t.CourierName,
			TrackingId:    t.TrackingID,
			PackedAt:      t.PackedAt,
			ShippedAt:     t.ShippedAt,
			DeliveredAt:   t.DeliveredAt,
		}
	}
	return out
}

func toQCRecord(r order.QCRecord) *servers.QCRecord {
	out := &servers.QCRecord{
		Decision: string(r.Decision),
		VideoRef: r.VideoRef,
		Reason:   r.Reason,
		Rounds:   r.Rounds,
	}
	if f := r.Feedback; f != nil {
		out.Feedback = &servers.QCFeedback{
			DefectType:  f.DefectType,
			Severity:    f.Severity,
			Location:    f.Location,
			RequiredFix: f.RequiredFix,
		}
	}
	return out
}

func toStageDelays(delays []services.StageDelay) []servers.StageDelay {
	out := make([]servers.StageDelay, len(delays))
	for i, d := range delays {
		out[i] = servers.StageDelay{
			Stage:          d.Stage,
			Bucket:         string(d.Bucket),
			ElapsedSeconds: int64(d.Elapsed.Seconds()),
			Open:           d.Open,
		}
	}
	return out
}

func toAuditTrail(trail queries.GetAuditTrailQueryResponse) servers.AuditTrail {
	out := servers.AuditTrail{Events: make([]servers.AuditEvent, len(trail.Events))}
	for i, e := range trail.Events {
		out.Events[i] = servers.AuditEvent{
			Seq:           e.Seq,
			ActorRole:     e.ActorRole.String(),
			ActorId:       uuidPtr(e.ActorID),
			Outcome:       string(e.Outcome),
			Machine:       string(e.Machine),
			From:          e.From,
			To:            e.To,
			ChangedFields: e.ChangedFields,
			Reason:        e.Reason,
			Metadata:      e.Metadata,
			CreatedAt:     e.CreatedAt,
		}
	}
	if trail.Replay != nil {
		out.ReplayedState = trail.Replay.State.String()
		out.ReplayedDeliveryState = trail.Replay.DeliveryState.String()
	}
	if trail.ReplayErr != nil {
		out.ReplayError = trail.ReplayErr.Error()
	}
	return out
}

func toDelayReport(r queries.GetDelayReportQueryResponse) servers.DelayReport {
	out := servers.DelayReport{
		Counts:  make(map[string]map[string]int, len(r.Counts)),
		Overdue: make([]servers.OverdueOrder, len(r.Overdue)),
	}
	for stage, buckets := range r.Counts {
		m := make(map[string]int, len(buckets))
		for b, n := range buckets {
			m[string(b)] = n
		}
		out.Counts[stage] = m
	}
	for i, o := range r.Overdue {
		out.Overdue[i] = servers.OverdueOrder{OrderId: o.OrderID.Bytes(), Delays: toStageDelays(o.Delays)}
	}
	return out
}
