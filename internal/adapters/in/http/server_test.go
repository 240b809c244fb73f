package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	orderhttp "orderflow/internal/adapters/in/http"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/generated/servers"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type MockTransitionApplier struct{ mock.Mock }

func (m *MockTransitionApplier) Handle(ctx context.Context, cmd commands.ApplyTransitionCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockOrderCreator struct{ mock.Mock }

func (m *MockOrderCreator) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockOrderOverrider struct{ mock.Mock }

func (m *MockOrderOverrider) Handle(ctx context.Context, cmd commands.ManualOverrideCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockOrderViewer struct{ mock.Mock }

func (m *MockOrderViewer) Handle(ctx context.Context, query queries.GetOrderViewQuery) (services.OrderView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(services.OrderView), args.Error(1)
}

type MockDelayReporter struct{ mock.Mock }

func (m *MockDelayReporter) Handle(ctx context.Context, query queries.GetDelayReportQuery) (queries.GetDelayReportQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetDelayReportQueryResponse), args.Error(1)
}

type fixture struct {
	echo        *echo.Echo
	transition  *MockTransitionApplier
	create      *MockOrderCreator
	override    *MockOrderOverrider
	view        *MockOrderViewer
	delayReport *MockDelayReporter
}

func newFixture(t *testing.T, validate bool) fixture {
	t.Helper()
	f := fixture{
		echo:        echo.New(),
		transition:  &MockTransitionApplier{},
		create:      &MockOrderCreator{},
		override:    &MockOrderOverrider{},
		view:        &MockOrderViewer{},
		delayReport: &MockDelayReporter{},
	}
	if validate {
		doc, err := servers.GetSwagger()
		require.NoError(t, err)
		mw, err := orderhttp.RequestValidator(doc)
		require.NoError(t, err)
		f.echo.Use(mw)
	}
	server := orderhttp.NewServer(orderhttp.Handlers{
		Transition:  f.transition,
		CreateOrder: f.create,
		Override:    f.override,
		OrderView:   f.view,
		DelayReport: f.delayReport,
	}, func() time.Time { return t0 })
	servers.RegisterHandlers(f.echo, server)
	return f
}

func (f fixture) do(method, path, role, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if role != "" {
		req.Header.Set("X-Actor-Role", role)
	}
	if id != "" {
		req.Header.Set("X-Actor-Id", id)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func newOrder(t *testing.T, buyer kernel.UUID, state order.State) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), buyer, "Denim jackets", 250, "s3://designs/jacket.pdf", t0)
	require.NoError(t, err)
	s := o.Snapshot()
	s.State = state
	restored, err := order.RestoreOrder(s)
	require.NoError(t, err)
	return restored
}

func TestServer_CreateOrder(t *testing.T) {
	// Given
	f := newFixture(t, true)
	buyer := kernel.NewUUID()
	created := newOrder(t, buyer, order.Draft)
	f.create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
		return cmd.Title() == "Denim jackets" && cmd.Quantity() == 250 && cmd.Actor().Is(buyer)
	})).Return(commands.TransitionResult{Order: created}, nil).Once()

	// When
	rec := f.do(http.MethodPost, "/api/v1/orders", "buyer", buyer.String(), `{"title":"Denim jackets","quantity":250}`)

	// Then
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body servers.TransitionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Order)
	assert.Equal(t, "DRAFT", body.Order.State)
	assert.False(t, body.NoOp)
	f.create.AssertExpectations(t)
}

func TestServer_MarkPaymentReceivedRecordsWebhookSource(t *testing.T) {
	// Given
	f := newFixture(t, true)
	o := newOrder(t, kernel.NewUUID(), order.PaymentConfirmed)
	f.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ApplyTransitionCommand) bool {
		return cmd.OrderID().IsEqual(o.ID()) &&
			cmd.Actor().Role() == kernel.RoleSystem &&
			*cmd.TargetState() == order.PaymentConfirmed &&
			cmd.Metadata()["source"] == "payment_webhook"
	})).Return(commands.TransitionResult{Order: o}, nil).Once()

	// When
	rec := f.do(http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/payment-received", "system", "", "")

	// Then
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f.transition.AssertExpectations(t)
}

func TestServer_ErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid transition", errs.NewInvalidTransitionError("order", "DRAFT", "COMPLETED"), http.StatusConflict},
		{"conflict", errs.NewConcurrentModificationError("x", 2), http.StatusConflict},
		{"unauthorized", errs.NewUnauthorizedActorError("buyer", "b", "approve_qc", nil), http.StatusForbidden},
		{"precondition", errs.NewPreconditionFailedError("payment_received", "payment has not been received"), http.StatusUnprocessableEntity},
		{"not found", errs.NewObjectNotFoundError("order", "x"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			f := newFixture(t, false)
			f.transition.On("Handle", mock.Anything, mock.Anything).Return(commands.TransitionResult{}, tt.err).Once()
			adminID := kernel.NewUUID()

			// When
			rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/review", "admin", adminID.String(), "")

			// Then
			assert.Equal(t, tt.status, rec.Code)
			var body servers.Error
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(errs.KindOf(tt.err)), body.Kind)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, orderhttp.StatusFor(errs.KindInvalidInput))
	assert.Equal(t, http.StatusInternalServerError, orderhttp.StatusFor(errs.KindFatal))
	assert.Equal(t, http.StatusInternalServerError, orderhttp.StatusFor(errs.KindAuditWriteDegraded))
}

func TestServer_RejectQCRequiresFeedbackForBulk(t *testing.T) {
	f := newFixture(t, true)
	buyer := kernel.NewUUID()

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/qc/bulk/reject", "buyer", buyer.String(),
		`{"reason":"colour is off on 30% of units"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.transition.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_ApplyTransitionParsesTargets(t *testing.T) {
	f := newFixture(t, true)
	manufacturer := kernel.NewUUID()
	o := newOrder(t, kernel.NewUUID(), order.Dispatched)
	f.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ApplyTransitionCommand) bool {
		return *cmd.TargetState() == order.Dispatched && *cmd.TargetDelivery() == order.InTransit
	})).Return(commands.TransitionResult{Order: o}, nil).Once()

	rec := f.do(http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/transition", "manufacturer", manufacturer.String(),
		`{"state":"DISPATCHED","deliveryState":"IN_TRANSIT"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f.transition.AssertExpectations(t)
}

func TestServer_OverrideValidation(t *testing.T) {
	f := newFixture(t, true)
	adminID := kernel.NewUUID()

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/override", "admin", adminID.String(),
		`{"state":"DELIVERED","reason":"short"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.override.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_MissingActorRole(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/review", "", "", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetOrderUsesRoleLabel(t *testing.T) {
	// Given
	f := newFixture(t, true)
	buyer := kernel.NewUUID()
	o := newOrder(t, buyer, order.ManufacturerAssigned)
	view := services.NewOrderProjector(func() time.Time { return t0 }).View(o, kernel.RoleBuyer)
	f.view.On("Handle", mock.Anything, mock.Anything).Return(view, nil).Once()

	// When
	rec := f.do(http.MethodGet, "/api/v1/orders/"+o.ID().String(), "buyer", buyer.String(), "")

	// Then
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body servers.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, view.Label.Text, body.Label)
	assert.Equal(t, "MANUFACTURER_ASSIGNED", body.State)
	assert.Nil(t, body.Tracking)
}

func TestServer_DelayReportIsForOperations(t *testing.T) {
	f := newFixture(t, true)
	buyer := kernel.NewUUID()

	rec := f.do(http.MethodGet, "/api/v1/reports/delays", "buyer", buyer.String(), "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.delayReport.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}
