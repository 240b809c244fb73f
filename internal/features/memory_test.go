package features

import (
	"context"
	"errors"
	"slices"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// memoryStore keeps committed orders and audit events between units of work.
type memoryStore struct {
	orders map[kernel.UUID]order.Snapshot
	events []audit.Event
}

func newMemoryStore() *memoryStore {
	return &memoryStore{orders: map[kernel.UUID]order.Snapshot{}}
}

func (s *memoryStore) Create() commands.UoW {
	return &memoryUoW{store: s}
}

func (s *memoryStore) order(id kernel.UUID) (*order.Order, error) {
	snap, ok := s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snap)
}

type memoryUoW struct {
	store  *memoryStore
	active bool
	orders map[kernel.UUID]order.Snapshot
	events []audit.Event
}

func (u *memoryUoW) Begin(context.Context) error {
	if !u.active {
		u.active = true
		u.orders = map[kernel.UUID]order.Snapshot{}
		u.events = nil
	}
	return nil
}

func (u *memoryUoW) Commit(context.Context) error {
	if !u.active {
		return errors.New("no active transaction")
	}
	for id, snap := range u.orders {
		u.store.orders[id] = snap
	}
	for _, e := range u.events {
		e.Seq = int64(len(u.store.events) + 1)
		u.store.events = append(u.store.events, e)
	}
	u.active = false
	return nil
}

func (u *memoryUoW) Rollback(context.Context) error {
	if !u.active {
		return errors.New("no active transaction")
	}
	u.active = false
	return nil
}

func (u *memoryUoW) Savepoint(_ context.Context, _ string, fn func() error) error {
	mark := len(u.events)
	if err := fn(); err != nil {
		u.events = u.events[:mark]
		return err
	}
	return nil
}

func (u *memoryUoW) OrderRepository() ports.OrderRepository {
	return memoryOrders{u}
}

func (u *memoryUoW) AuditLogRepository() ports.AuditLogRepository {
	return memoryAudit{u}
}

type memoryOrders struct{ u *memoryUoW }

func (r memoryOrders) current(id kernel.UUID) (order.Snapshot, bool) {
	if snap, ok := r.u.orders[id]; ok {
		return snap, true
	}
	snap, ok := r.u.store.orders[id]
	return snap, ok
}

func (r memoryOrders) Add(_ context.Context, o *order.Order) error {
	r.u.orders[o.ID()] = o.Snapshot()
	return nil
}

func (r memoryOrders) Update(_ context.Context, o *order.Order) error {
	stored, ok := r.current(o.ID())
	if !ok {
		return errs.NewObjectNotFoundError("order", o.ID().String())
	}
	if stored.Version != o.ExpectedVersion() {
		return errs.NewConcurrentModificationError(o.ID().String(), o.ExpectedVersion())
	}
	r.u.orders[o.ID()] = o.Snapshot()
	return nil
}

func (r memoryOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	snap, ok := r.current(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snap)
}

func (r memoryOrders) ListOpen(ctx context.Context, limit int) ([]*order.Order, error) {
	var out []*order.Order
	for id := range r.u.store.orders {
		o, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if o.State() != order.Completed && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}

type memoryAudit struct{ u *memoryUoW }

func (r memoryAudit) Append(_ context.Context, events ...audit.Event) error {
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	r.u.events = append(r.u.events, events...)
	return nil
}

func (r memoryAudit) ListByOrder(_ context.Context, id kernel.UUID) ([]audit.Event, error) {
	return slices.DeleteFunc(slices.Clone(r.u.store.events), func(e audit.Event) bool {
		return !e.OrderID.IsEqual(id)
	}), nil
}

type discardNotifier struct{}

func (discardNotifier) Dispatch(context.Context, ports.Notification) error { return nil }

type discardMetrics struct{}

func (discardMetrics) TransitionApplied(string, string, string) {}
func (discardMetrics) TransitionDenied(string)                  {}
func (discardMetrics) AuditWriteDegraded()                      {}
func (discardMetrics) ConcurrencyRetry()                        {}
func (discardMetrics) NotificationFailed()                      {}
func (discardMetrics) SetDelayBuckets(string, map[string]int)   {}
