package services_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func restored(t *testing.T, mutate func(*order.Snapshot)) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "Tote bags", 1000, "s3://tote.pdf", t0)
	require.NoError(t, err)
	s := o.Snapshot()
	mutate(&s)
	o, err = order.RestoreOrder(s)
	require.NoError(t, err)
	return o
}

func TestOrderProjector_Label(t *testing.T) {
	p := services.NewOrderProjector(nil)

	t.Run("buyers never see internal state names", func(t *testing.T) {
		for _, s := range order.AllStates() {
			l := p.Label(s, kernel.RoleBuyer)
			assert.NotEqual(t, s.String(), l.Text)
			assert.NotEmpty(t, l.Color, s.String())
		}
		assert.Equal(t, "Approved – Manufacturer Assigned", p.Label(order.ManufacturerAssigned, kernel.RoleBuyer).Text)
	})

	t.Run("manufacturers get their own wording", func(t *testing.T) {
		assert.Equal(t, "New Order Assigned", p.Label(order.ManufacturerAssigned, kernel.RoleManufacturer).Text)
	})

	t.Run("admins see the humanized state name", func(t *testing.T) {
		l := p.Label(order.BulkQCUploaded, kernel.RoleAdmin)
		assert.Equal(t, "Bulk QC Uploaded", l.Text)
		assert.Equal(t, "yellow", l.Color)
	})
}

func TestBuyerTracking(t *testing.T) {
	t.Run("should be nil before delivery starts", func(t *testing.T) {
		o := restored(t, func(s *order.Snapshot) { s.State = order.ReadyForDispatch })
		assert.Nil(t, services.BuyerTracking(o))
	})

	t.Run("should hide courier details while only packed", func(t *testing.T) {
		o := restored(t, func(s *order.Snapshot) {
			s.State = order.ReadyForDispatch
			s.DeliveryState = order.Packed
			s.CourierName = "DHL"
			s.TrackingID = "TRK-9"
		})

		tr := services.BuyerTracking(o)

		require.NotNil(t, tr)
		assert.Equal(t, order.Packed, tr.State)
		assert.Empty(t, tr.CourierName)
		assert.Empty(t, tr.TrackingID)
	})

	t.Run("should expose courier details from pickup scheduled on", func(t *testing.T) {
		o := restored(t, func(s *order.Snapshot) {
			s.State = order.Dispatched
			s.DeliveryState = order.InTransit
			s.CourierName = "DHL"
			s.TrackingID = "TRK-9"
		})

		tr := services.BuyerTracking(o)

		require.NotNil(t, tr)
		assert.Equal(t, "DHL", tr.CourierName)
		assert.Equal(t, "TRK-9", tr.TrackingID)
	})
}

func TestMeasure(t *testing.T) {
	acceptance := services.Stages[0]

	cases := []struct {
		name    string
		elapsed time.Duration
		closed  bool
		bucket  services.DelayBucket
	}{
		{"closed under warning", 10 * time.Hour, true, services.DelayOK},
		{"closed at warning", 24 * time.Hour, true, services.DelayWarning},
		{"closed at critical", 48 * time.Hour, true, services.DelayCritical},
		{"open measured against now", 30 * time.Hour, false, services.DelayWarning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := restored(t, func(s *order.Snapshot) {
				s.Milestones = map[order.Milestone]time.Time{order.MilestoneSubmitted: t0}
				if tc.closed {
					s.Milestones[order.MilestoneApproved] = t0.Add(tc.elapsed)
				}
			})

			d := services.Measure(acceptance, o, t0.Add(tc.elapsed))

			assert.Equal(t, tc.bucket, d.Bucket)
			assert.Equal(t, tc.elapsed, d.Elapsed)
			assert.Equal(t, !tc.closed, d.Open)
		})
	}

	t.Run("pending without start milestone", func(t *testing.T) {
		o := restored(t, func(*order.Snapshot) {})
		d := services.Measure(acceptance, o, t0)
		assert.Equal(t, services.DelayPending, d.Bucket)
	})
}

func TestOrderProjector_View(t *testing.T) {
	now := t0.Add(100 * time.Hour)
	p := services.NewOrderProjector(func() time.Time { return now })
	o := restored(t, func(s *order.Snapshot) {
		s.State = order.PaymentRequested
		s.Milestones = map[order.Milestone]time.Time{order.MilestoneSubmitted: t0, order.MilestoneApproved: t0.Add(2 * time.Hour)}
	})

	v := p.View(o, kernel.RoleBuyer)

	assert.True(t, v.PaymentRequired)
	assert.Equal(t, "Payment Required", v.Label.Text)
	assert.Nil(t, v.Tracking)
	require.Len(t, v.Delays, 4)
	assert.Equal(t, services.DelayOK, v.Delays[0].Bucket)
	assert.Equal(t, services.DelayPending, v.Delays[1].Bucket)

	admin := p.View(o, kernel.RoleAdmin)
	assert.NotNil(t, admin.Tracking)
}
