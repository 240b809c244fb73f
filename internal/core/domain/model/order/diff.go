package order

import (
	"fmt"
	"slices"
	"time"
)

// Changes is the field-level difference between two snapshots. Before and After only
// hold the changed fields.
type Changes struct {
	Fields []string
	Before map[string]any
	After  map[string]any
}

func (c Changes) IsEmpty() bool {
	return len(c.Fields) == 0
}

// Diff compares two snapshots of the same order. Version and UpdatedAt are
// bookkeeping and never reported.
func Diff(before, after Snapshot) Changes {
	c := Changes{Before: map[string]any{}, After: map[string]any{}}
	add := func(field string, b, a any) {
		if b == a {
			return
		}
		c.Fields = append(c.Fields, field)
		c.Before[field] = b
		c.After[field] = a
	}

	add("state", before.State.String(), after.State.String())
	add("delivery_state", before.DeliveryState.String(), after.DeliveryState.String())
	add(FieldManufacturerID, uuidString(before), uuidString(after))
	add(FieldPaymentLink, before.PaymentLink, after.PaymentLink)
	add(FieldPaymentReceived, before.PaymentReceived, after.PaymentReceived)
	add(FieldSpecsLocked, before.SpecsLocked, after.SpecsLocked)
	add(FieldRejectionNotes, before.RejectionNotes, after.RejectionNotes)
	add(FieldDesignFileRef, before.DesignFileRef, after.DesignFileRef)
	add(FieldPackagingVideoRef, before.PackagingVideoRef, after.PackagingVideoRef)
	add(FieldCourierName, before.CourierName, after.CourierName)
	add(FieldTrackingID, before.TrackingID, after.TrackingID)
	add("sample_qc", qcSummary(before.SampleQC), qcSummary(after.SampleQC))
	add("bulk_qc", qcSummary(before.BulkQC), qcSummary(after.BulkQC))

	keys := make([]Milestone, 0, len(after.Milestones))
	for m := range after.Milestones {
		keys = append(keys, m)
	}
	for m := range before.Milestones {
		if _, ok := after.Milestones[m]; !ok {
			keys = append(keys, m)
		}
	}
	slices.Sort(keys)
	for _, m := range keys {
		add(string(m), timeString(before.Milestones, m), timeString(after.Milestones, m))
	}
	return c
}

func uuidString(s Snapshot) string {
	if s.ManufacturerID == nil {
		return ""
	}
	return s.ManufacturerID.String()
}

func timeString(ms map[Milestone]time.Time, m Milestone) string {
	t, ok := ms[m]
	if !ok {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func qcSummary(r QCRecord) string {
	s := fmt.Sprintf("decision=%s video=%s rounds=%d", r.Decision, r.VideoRef, r.Rounds)
	if r.Reason != "" {
		s += " reason=" + r.Reason
	}
	if r.Feedback != nil {
		s += fmt.Sprintf(" feedback=%s/%s/%s/%s",
			r.Feedback.DefectType, r.Feedback.Severity, r.Feedback.Location, r.Feedback.RequiredFix)
	}
	return s
}
