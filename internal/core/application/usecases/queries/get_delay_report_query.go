package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// DefaultDelayReportLimit caps how many open orders one report measures.
const DefaultDelayReportLimit = 1000

var ErrGetDelayReportQueryIsNotConstructed = errors.New(
	"GetDelayReportQuery must be created via NewGetDelayReportQuery constructor",
)

// GetDelayReportQuery asks for the delay buckets of open orders.
type GetDelayReportQuery struct {
	limit int
	guard guard.ConstructorGuard
}

// NewGetDelayReportQuery uses DefaultDelayReportLimit when limit is zero.
func NewGetDelayReportQuery(limit int) (GetDelayReportQuery, error) {
	if limit < 0 {
		return GetDelayReportQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, "unbounded")
	}
	if limit == 0 {
		limit = DefaultDelayReportLimit
	}
	return GetDelayReportQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDelayReportQuery) Validate() error {
	return q.guard.Validate(ErrGetDelayReportQueryIsNotConstructed)
}

func (q GetDelayReportQuery) Limit() int {
	return q.limit
}

// OrderDelays are the stage measurements of one open order.
type OrderDelays struct {
	OrderID kernel.UUID
	Delays  []services.StageDelay
}

// GetDelayReportQueryResponse counts orders per stage and bucket and lists the
// orders with an open stage in warning or worse.
type GetDelayReportQueryResponse struct {
	Counts  map[string]map[services.DelayBucket]int
	Overdue []OrderDelays
}
