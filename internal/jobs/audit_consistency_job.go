package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/robfig/cron/v3"
)

// DefaultAuditSchedule runs the audit consistency check hourly.
const DefaultAuditSchedule = "0 0 * * * *"

// OpenOrderLister lists orders that have not reached COMPLETED.
type OpenOrderLister interface {
	ListOpen(ctx context.Context, limit int) ([]*order.Order, error)
}

// AuditTrailReader returns the audit trail of an order with its replay.
type AuditTrailReader interface {
	Handle(ctx context.Context, query queries.GetAuditTrailQuery) (queries.GetAuditTrailQueryResponse, error)
}

// AuditConsistencyJob replays the audit trail of every open order and reports the
// orders whose stored state the trail does not reproduce. A mismatch usually means a
// degraded audit write.
type AuditConsistencyJob struct {
	orders   OpenOrderLister
	trails   AuditTrailReader
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewAuditConsistencyJob(
	orders OpenOrderLister,
	trails AuditTrailReader,
	schedule string,
	logger *slog.Logger,
) *AuditConsistencyJob {
	if schedule == "" {
		schedule = DefaultAuditSchedule
	}
	return &AuditConsistencyJob{
		orders:   orders,
		trails:   trails,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "audit_consistency_job"),
	}
}

// Run checks every open order once and returns how many were inconsistent.
func (j *AuditConsistencyJob) Run(ctx context.Context) (int, error) {
	open, err := j.orders.ListOpen(ctx, queries.DefaultDelayReportLimit)
	if err != nil {
		return 0, err
	}

	inconsistent := 0
	for _, o := range open {
		query, err := queries.NewGetAuditTrailQuery(o.ID(), kernel.SystemActor())
		if err != nil {
			return inconsistent, err
		}
		trail, err := j.trails.Handle(ctx, query)
		switch {
		case err != nil:
			j.logger.WarnContext(ctx, "audit trail unavailable", "order_id", o.ID().String(), "error", err)
			inconsistent++
		case trail.ReplayErr != nil:
			j.logger.WarnContext(ctx, "audit trail does not replay", "order_id", o.ID().String(), "error", trail.ReplayErr)
			inconsistent++
		case trail.Replay.State != o.State() || trail.Replay.DeliveryState != o.DeliveryState():
			j.logger.WarnContext(ctx, "audit trail diverges from order",
				"order_id", o.ID().String(),
				"state", o.State().String(),
				"replayed_state", trail.Replay.State.String(),
				"delivery_state", o.DeliveryState().String(),
				"replayed_delivery_state", trail.Replay.DeliveryState.String(),
			)
			inconsistent++
		}
	}
	return inconsistent, nil
}

// Start schedules Run.
func (j *AuditConsistencyJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		n, err := j.Run(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "Audit consistency job failed", "error", err)
			return
		}
		j.logger.InfoContext(ctx, "Audit consistency checked", "inconsistent", n)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Audit consistency job started", "schedule", j.schedule)
	return nil
}

// Stop stops the audit consistency job.
func (j *AuditConsistencyJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Audit consistency job stopped")
}
