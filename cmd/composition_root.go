package cmd

import (
	"context"
	"log/slog"
	"time"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/kafka"
	"orderflow/internal/adapters/out/metrics"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/auditrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	writer     *kafkago.Writer
	notifier   ports.NotificationDispatcher
	metrics    *metrics.WorkflowMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewCompositionRoot wires the adapters around gormDB. Notifications go to Kafka
// when brokers are configured and are only logged otherwise. Close releases the
// Kafka writer.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	reg prometheus.Registerer,
	logger *slog.Logger,
) CompositionRoot {
	c := CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		metrics:    metrics.NewWorkflowMetrics(reg),
		logger:     logger,
		now:        time.Now,
	}

	c.notifier = LogDispatcher{logger: logger.With("component", "notifications")}
	if config.NotificationsEnabled() {
		c.writer = kafka.NewWriter(config.KafkaBrokers, config.KafkaNotificationTopic, notificationFailed(c.metrics, logger))
		c.notifier = kafka.NewNotificationDispatcher(c.writer, time.Now)
	}
	return c
}

func (c *CompositionRoot) Close() error {
	if c.writer == nil {
		return nil
	}
	return c.writer.Close()
}

func notificationFailed(m ports.WorkflowMetrics, logger *slog.Logger) func(int, error) {
	logger = logger.With("component", "notifications")
	return func(lost int, err error) {
		for range lost {
			m.NotificationFailed()
		}
		logger.Warn("notification delivery failed", "lost", lost, "error", err)
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) Metrics() ports.WorkflowMetrics {
	return c.metrics
}

func (c *CompositionRoot) CreateApplyTransitionCommandHandler() *commands.ApplyTransitionCommandHandler {
	h := commands.NewApplyTransitionCommandHandler(c.uow(), c.notifier, c.metrics, c.logger, c.now)
	return &h
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	h := commands.NewCreateOrderCommandHandler(c.uow(), c.metrics, c.logger, c.now)
	return &h
}

func (c *CompositionRoot) CreateManualOverrideCommandHandler() *commands.ManualOverrideCommandHandler {
	h := commands.NewManualOverrideCommandHandler(c.uow(), c.metrics, c.logger, c.now)
	return &h
}

func (c *CompositionRoot) CreateGetOpenOrdersQueryHandler() queries.GetOpenOrdersQueryHandler {
	return queries.NewGetOpenOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderViewQueryHandler() queries.GetOrderViewQueryHandler {
	return queries.NewGetOrderViewQueryHandler(c.orderReader(), c.now)
}

func (c *CompositionRoot) CreateGetAuditTrailQueryHandler() queries.GetAuditTrailQueryHandler {
	return queries.NewGetAuditTrailQueryHandler(auditrepo.NewGormAuditLogRepository(c.gormDB))
}

func (c *CompositionRoot) CreateGetDelayReportQueryHandler() queries.GetDelayReportQueryHandler {
	return queries.NewGetDelayReportQueryHandler(c.orderReader(), c.now)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		Transition:  c.CreateApplyTransitionCommandHandler(),
		CreateOrder: c.CreateCreateOrderCommandHandler(),
		Override:    c.CreateManualOverrideCommandHandler(),
		OpenOrders:  c.CreateGetOpenOrdersQueryHandler(),
		OrderView:   c.CreateGetOrderViewQueryHandler(),
		AuditTrail:  c.CreateGetAuditTrailQueryHandler(),
		DelayReport: c.CreateGetDelayReportQueryHandler(),
	}, c.now)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	delayJob := jobs.NewDelayMonitorJob(c.CreateGetDelayReportQueryHandler(), c.metrics, c.config.DelaySchedule, c.logger)
	auditJob := jobs.NewAuditConsistencyJob(c.orderReader(), c.CreateGetAuditTrailQueryHandler(), c.config.AuditSchedule, c.logger)
	return jobs.NewJobManager(delayJob, auditJob)
}

// orderReader serves queries outside a unit of work.
func (c *CompositionRoot) orderReader() *orderrepo.GormOrderRepository {
	return orderrepo.NewGormOrderRepository(c.gormDB, nil)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// LogDispatcher stands in for the Kafka dispatcher when no broker is configured.
type LogDispatcher struct {
	logger *slog.Logger
}

func (d LogDispatcher) Dispatch(ctx context.Context, n ports.Notification) error {
	d.logger.InfoContext(ctx, "notification",
		"user_id", n.UserID.String(),
		"order_id", n.OrderID.String(),
		"type", string(n.Type),
		"title", n.Title)
	return nil
}
