package commands_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return t0 }

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOpen(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockAuditLogRepository struct{ mock.Mock }

func (m *MockAuditLogRepository) Append(ctx context.Context, events ...audit.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]audit.Event, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]audit.Event), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Savepoint runs fn unless the expectation returns an error of its own.
func (m *MockUoW) Savepoint(ctx context.Context, name string, fn func() error) error {
	args := m.Called(ctx, name)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn()
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) AuditLogRepository() ports.AuditLogRepository {
	args := m.Called()
	return args.Get(0).(ports.AuditLogRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Dispatch(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) TransitionApplied(machine, from, to string) { m.Called(machine, from, to) }
func (m *MockMetrics) TransitionDenied(kind string)               { m.Called(kind) }
func (m *MockMetrics) AuditWriteDegraded()                        { m.Called() }
func (m *MockMetrics) ConcurrencyRetry()                          { m.Called() }
func (m *MockMetrics) NotificationFailed()                        { m.Called() }
func (m *MockMetrics) SetDelayBuckets(stage string, counts map[string]int) {
	m.Called(stage, counts)
}

// newMetrics accepts any call; tests assert on the ones they care about.
func newMetrics() *MockMetrics {
	m := new(MockMetrics)
	m.On("TransitionApplied", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("TransitionDenied", mock.Anything).Maybe()
	m.On("AuditWriteDegraded").Maybe()
	m.On("ConcurrencyRetry").Maybe()
	m.On("NotificationFailed").Maybe()
	m.On("SetDelayBuckets", mock.Anything, mock.Anything).Maybe()
	return m
}

func actor(t *testing.T, role kernel.Role, id kernel.UUID) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(role, &id)
	require.NoError(t, err)
	return a
}

// orderAt restores an order in state with the given snapshot tweaks applied.
func orderAt(t *testing.T, state order.State, mutate func(*order.Snapshot)) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "Hoodie run", 500, "s3://designs/hoodie.pdf", t0)
	require.NoError(t, err)
	s := o.Snapshot()
	s.State = state
	s.Version = 2
	if mutate != nil {
		mutate(&s)
	}
	o, err = order.RestoreOrder(s)
	require.NoError(t, err)
	return o
}

func ptr[T any](v T) *T { return &v }
