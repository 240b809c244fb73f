package queries_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderReader) ListOpen(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockAuditReader struct{ mock.Mock }

func (m *MockAuditReader) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]audit.Event, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]audit.Event), args.Error(1)
}

func actor(t *testing.T, role kernel.Role, id kernel.UUID) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(role, &id)
	require.NoError(t, err)
	return a
}

func orderAt(t *testing.T, state order.State, mutate func(*order.Snapshot)) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "Hoodie run", 500, "s3://designs/hoodie.pdf", t0)
	require.NoError(t, err)
	s := o.Snapshot()
	s.State = state
	if mutate != nil {
		mutate(&s)
	}
	o, err = order.RestoreOrder(s)
	require.NoError(t, err)
	return o
}

func TestGetOrderViewQueryHandler_Handle(t *testing.T) {
	ctx := t.Context()
	manufacturerID := kernel.NewUUID()
	o := orderAt(t, order.ManufacturerAssigned, func(s *order.Snapshot) {
		s.ManufacturerID = &manufacturerID
	})
	reader := new(MockOrderReader)
	reader.On("Get", ctx, o.ID()).Return(o, nil)
	h := queries.NewGetOrderViewQueryHandler(reader, func() time.Time { return t0 })

	t.Run("should project the buyer vocabulary", func(t *testing.T) {
		// Given
		query, err := queries.NewGetOrderViewQuery(o.ID(), actor(t, kernel.RoleBuyer, o.BuyerID()))
		require.NoError(t, err)

		// When
		view, err := h.Handle(ctx, query)

		// Then
		require.NoError(t, err)
		assert.Equal(t, "Approved – Manufacturer Assigned", view.Label.Text)
		assert.False(t, view.PaymentRequired)
		assert.Nil(t, view.Tracking)
	})

	t.Run("should let the assigned manufacturer see the order", func(t *testing.T) {
		query, err := queries.NewGetOrderViewQuery(o.ID(), actor(t, kernel.RoleManufacturer, manufacturerID))
		require.NoError(t, err)

		view, err := h.Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, kernel.RoleManufacturer, view.Role)
	})

	t.Run("should hide the order from other buyers", func(t *testing.T) {
		query, err := queries.NewGetOrderViewQuery(o.ID(), actor(t, kernel.RoleBuyer, kernel.NewUUID()))
		require.NoError(t, err)

		_, err = h.Handle(ctx, query)

		assert.Equal(t, errs.KindUnauthorizedActor, errs.KindOf(err))
	})

	t.Run("should pass not found through", func(t *testing.T) {
		missing := kernel.NewUUID()
		reader.On("Get", ctx, missing).Return(nil, errs.NewObjectNotFoundError("order", missing.String()))
		query, err := queries.NewGetOrderViewQuery(missing, kernel.SystemActor())
		require.NoError(t, err)

		_, err = h.Handle(ctx, query)

		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})
}

func TestGetAuditTrailQueryHandler_Handle(t *testing.T) {
	ctx := t.Context()
	admin := actor(t, kernel.RoleAdmin, kernel.NewUUID())
	o := orderAt(t, order.Draft, nil)
	created := audit.NewCreatedEvent(o, actor(t, kernel.RoleBuyer, o.BuyerID()), t0)
	created.Seq = 1

	t.Run("should replay a valid trail", func(t *testing.T) {
		// Given
		reader := new(MockAuditReader)
		reader.On("ListByOrder", ctx, o.ID()).Return([]audit.Event{created}, nil).Once()
		query, err := queries.NewGetAuditTrailQuery(o.ID(), admin)
		require.NoError(t, err)

		// When
		resp, err := queries.NewGetAuditTrailQueryHandler(reader).Handle(ctx, query)

		// Then
		require.NoError(t, err)
		require.NotNil(t, resp.Replay)
		assert.Equal(t, order.Draft, resp.Replay.State)
		assert.NoError(t, resp.ReplayErr)
	})

	t.Run("should report an illegal trail without failing", func(t *testing.T) {
		// Given
		jump := created
		jump.Seq = 2
		jump.From, jump.To = "DRAFT", "COMPLETED"
		reader := new(MockAuditReader)
		reader.On("ListByOrder", ctx, o.ID()).Return([]audit.Event{created, jump}, nil).Once()
		query, err := queries.NewGetAuditTrailQuery(o.ID(), admin)
		require.NoError(t, err)

		// When
		resp, err := queries.NewGetAuditTrailQueryHandler(reader).Handle(ctx, query)

		// Then
		require.NoError(t, err)
		assert.Nil(t, resp.Replay)
		assert.Error(t, resp.ReplayErr)
		assert.Len(t, resp.Events, 2)
	})

	t.Run("should be restricted to admins", func(t *testing.T) {
		query, err := queries.NewGetAuditTrailQuery(o.ID(), actor(t, kernel.RoleBuyer, o.BuyerID()))
		require.NoError(t, err)

		_, err = queries.NewGetAuditTrailQueryHandler(new(MockAuditReader)).Handle(ctx, query)

		assert.Equal(t, errs.KindUnauthorizedActor, errs.KindOf(err))
	})

	t.Run("should report unknown orders as not found", func(t *testing.T) {
		reader := new(MockAuditReader)
		reader.On("ListByOrder", ctx, o.ID()).Return([]audit.Event{}, nil).Once()
		query, err := queries.NewGetAuditTrailQuery(o.ID(), admin)
		require.NoError(t, err)

		_, err = queries.NewGetAuditTrailQueryHandler(reader).Handle(ctx, query)

		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})
}

func TestGetDelayReportQueryHandler_Handle(t *testing.T) {
	// Given
	ctx := t.Context()
	now := t0.Add(60 * time.Hour)
	late := orderAt(t, order.Submitted, func(s *order.Snapshot) {
		s.Milestones = map[order.Milestone]time.Time{order.MilestoneSubmitted: t0}
	})
	fresh := orderAt(t, order.Draft, nil)
	reader := new(MockOrderReader)
	reader.On("ListOpen", ctx, queries.DefaultDelayReportLimit).Return([]*order.Order{late, fresh}, nil).Once()
	query, err := queries.NewGetDelayReportQuery(0)
	require.NoError(t, err)

	// When
	resp, err := queries.NewGetDelayReportQueryHandler(reader, func() time.Time { return now }).Handle(ctx, query)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Counts["acceptance"][services.DelayCritical])
	assert.Equal(t, 1, resp.Counts["acceptance"][services.DelayPending])
	assert.Equal(t, 2, resp.Counts["delivery"][services.DelayPending])
	require.Len(t, resp.Overdue, 1)
	assert.Equal(t, late.ID(), resp.Overdue[0].OrderID)
}

func TestQueries_NotConstructed(t *testing.T) {
	assert.ErrorIs(t, queries.GetOrderViewQuery{}.Validate(), queries.ErrGetOrderViewQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetAuditTrailQuery{}.Validate(), queries.ErrGetAuditTrailQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetDelayReportQuery{}.Validate(), queries.ErrGetDelayReportQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetOpenOrdersQuery{}.Validate(), queries.ErrGetOpenOrdersQueryIsNotConstructed)

	_, err := queries.NewGetDelayReportQuery(-1)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
