package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetAuditTrailQueryIsNotConstructed = errors.New(
	"GetAuditTrailQuery must be created via NewGetAuditTrailQuery constructor",
)

// GetAuditTrailQuery asks for the audit trail of an order together with its replay.
type GetAuditTrailQuery struct {
	orderID kernel.UUID
	actor   kernel.Actor
	guard   guard.ConstructorGuard
}

func NewGetAuditTrailQuery(orderID kernel.UUID, actor kernel.Actor) (GetAuditTrailQuery, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return GetAuditTrailQuery{}, err
	}
	return GetAuditTrailQuery{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAuditTrailQuery) Validate() error {
	return q.guard.Validate(ErrGetAuditTrailQueryIsNotConstructed)
}

func (q GetAuditTrailQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetAuditTrailQuery) Actor() kernel.Actor {
	return q.actor
}

// GetAuditTrailQueryResponse carries the events in append order. Replay is nil and
// ReplayErr set when the trail does not walk permitted edges.
type GetAuditTrailQueryResponse struct {
	Events    []audit.Event
	Replay    *audit.ReplayResult
	ReplayErr error
}
