package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// DefaultDelaySchedule runs the delay monitor every five minutes.
const DefaultDelaySchedule = "0 */5 * * * *"

// DelayReporter builds the delay report of open orders.
type DelayReporter interface {
	Handle(ctx context.Context, query queries.GetDelayReportQuery) (queries.GetDelayReportQueryResponse, error)
}

// DelayMonitorJob periodically publishes the delay buckets of open orders as metrics
// and logs the orders that are overdue.
type DelayMonitorJob struct {
	reporter DelayReporter
	metrics  ports.WorkflowMetrics
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewDelayMonitorJob(
	reporter DelayReporter,
	metrics ports.WorkflowMetrics,
	schedule string,
	logger *slog.Logger,
) *DelayMonitorJob {
	if schedule == "" {
		schedule = DefaultDelaySchedule
	}
	return &DelayMonitorJob{
		reporter: reporter,
		metrics:  metrics,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "delay_monitor_job"),
	}
}

// Run computes one report. Start calls it on every tick.
func (j *DelayMonitorJob) Run(ctx context.Context) error {
	query, err := queries.NewGetDelayReportQuery(0)
	if err != nil {
		return err
	}
	report, err := j.reporter.Handle(ctx, query)
	if err != nil {
		return err
	}

	for stage, buckets := range report.Counts {
		counts := make(map[string]int, len(buckets))
		for bucket, n := range buckets {
			counts[string(bucket)] = n
		}
		j.metrics.SetDelayBuckets(stage, counts)
	}

	for _, o := range report.Overdue {
		for _, d := range o.Delays {
			if !d.Open || (d.Bucket != services.DelayWarning && d.Bucket != services.DelayCritical) {
				continue
			}
			j.logger.WarnContext(ctx, "order stage overdue",
				"order_id", o.OrderID.String(),
				"stage", d.Stage,
				"bucket", string(d.Bucket),
				"elapsed", d.Elapsed.String(),
			)
		}
	}
	return nil
}

// Start schedules Run.
func (j *DelayMonitorJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		if err := j.Run(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Delay monitor job failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Delay monitor job started", "schedule", j.schedule)
	return nil
}

// Stop stops the delay monitor job.
func (j *DelayMonitorJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Delay monitor job stopped")
}
